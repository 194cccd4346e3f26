package models

// IDSequence backs the human-readable display numbers (PR-, SR-, VT-, KT-,
// BILL-). One row per (scope, year), incremented inside the caller's
// transaction so concurrent allocations never collide.
type IDSequence struct {
	Scope string `gorm:"column:scope;primaryKey"`
	Year  int    `gorm:"column:year;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}

// TableName keeps the table name plural like the rest of the schema.
func (IDSequence) TableName() string {
	return "id_sequences"
}
