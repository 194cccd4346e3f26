package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	paginationpkg "github.com/sonigems/saraf-backend/pkg/pagination"
)

type fakeRepository struct {
	created       []*models.Notification
	createErrFor  map[uuid.UUID]error
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	deleteFn      func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	deleteAllFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err, ok := f.createErrFor[notification.UserID]; ok {
		return err
	}
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func (f *fakeRepository) Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, notificationID)
	}
	return false, nil
}

func (f *fakeRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.deleteAllFn != nil {
		return f.deleteAllFn(ctx, userID)
	}
	return 0, nil
}

type fakeAdminLister struct {
	admins []models.User
	err    error
}

func (f *fakeAdminLister) ListAdmins(ctx context.Context) ([]models.User, error) {
	return f.admins, f.err
}

func newServiceWithRepo(repo Repository, admins adminLister) Service {
	if admins == nil {
		admins = &fakeAdminLister{}
	}
	svc, _ := NewService(repo, admins)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Limit != paginationpkg.LimitWithBuffer(1) {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo, nil)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s got %s", second.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	errCode := pkgerrors.As(err).Code()
	if errCode != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", errCode)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", pkgerrors.As(err).Code())
	}
}

func TestService_DeleteNotFound(t *testing.T) {
	repo := &fakeRepository{
		deleteFn: func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", pkgerrors.As(err).Code())
	}
}

func TestService_DeleteAllReturnsCount(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{
		deleteAllFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			if id != userID {
				t.Fatalf("unexpected user id %s", id)
			}
			return 4, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	count, err := svc.DeleteAll(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected delete all error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}
}

func TestService_NotifyAdminsFansOutToAllAdmins(t *testing.T) {
	repo := &fakeRepository{}
	admins := &fakeAdminLister{admins: []models.User{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}}
	svc := newServiceWithRepo(repo, admins)

	err := svc.NotifyAdmins(context.Background(), Note{
		Type:    enums.NotificationTypeSalesRequest,
		Title:   "New sales request",
		Message: "SR-2026-0001 awaits review",
	})
	if err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(repo.created))
	}
}

func TestService_NotifyAdminsContinuesPastFailures(t *testing.T) {
	good := uuid.New()
	bad := uuid.New()
	repo := &fakeRepository{
		createErrFor: map[uuid.UUID]error{bad: errors.New("insert failed")},
	}
	admins := &fakeAdminLister{admins: []models.User{{ID: bad}, {ID: good}}}
	svc := newServiceWithRepo(repo, admins)

	err := svc.NotifyAdmins(context.Background(), Note{
		Type:  enums.NotificationTypeProductRequest,
		Title: "New product request",
	})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(repo.created) != 1 || repo.created[0].UserID != good {
		t.Fatalf("expected fan-out to continue past failure, created %d", len(repo.created))
	}
}

func TestService_NotifyUserValidatesType(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	err := svc.NotifyUser(context.Background(), uuid.New(), Note{Type: "bogus", Title: "x"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation, got %s", pkgerrors.As(err).Code())
	}
}
