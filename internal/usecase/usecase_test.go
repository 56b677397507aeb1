package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/gcapi/internal/auth"
	"github.com/GoArmGo/gcapi/internal/database/dbtest"
	"github.com/GoArmGo/gcapi/internal/database/storage"
	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/logger"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []payloads.UserRegisteredPayload
	err    error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, payload payloads.UserRegisteredPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return p.err
}

type recordingNotifier struct {
	to, subject, message string
}

func (n *recordingNotifier) Notify(_ context.Context, to, subject, message string) error {
	n.to, n.subject, n.message = to, subject, message
	return nil
}

type memoryFileStorage struct {
	objects map[string]string
	deleted []string
}

func newMemoryFileStorage() *memoryFileStorage {
	return &memoryFileStorage{objects: make(map[string]string)}
}

func (s *memoryFileStorage) UploadFile(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = contentType + ":" + string(data)
	return "http://files.test/bucket/" + key, nil
}

func (s *memoryFileStorage) DeleteFile(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fixture struct {
	users     UserUseCase
	auth      AuthUseCase
	gcs       GCUseCase
	products  ProductUseCase
	publisher *recordingPublisher
	notifier  *recordingNotifier
	files     *memoryFileStorage
	hasher    PasswordHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.NewDB(t)
	log := logger.Discard()
	userStorage := storage.NewUserStorage(db, log)

	f := &fixture{
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		files:     newMemoryFileStorage(),
		hasher:    auth.NewBcryptHasher(4),
	}
	f.auth = NewAuthUseCase(userStorage, f.hasher, auth.NewTokenManager("usecase-secret"), f.notifier, AuthConfig{
		AccessTTL:       time.Minute,
		VerificationTTL: time.Hour,
		PublicBaseURL:   "http://localhost:8000",
	}, log)
	f.users = NewUserUseCase(userStorage, f.hasher, f.publisher, log)
	f.gcs = NewGCUseCase(storage.NewGCStorage(db, log), log)
	f.products = NewProductUseCase(storage.NewProductStorage(db, log), f.files, log)
	return f
}

func (f *fixture) register(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func reason(t *testing.T, err error) string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Reason
}

func TestRegisterValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice1")

	cases := []struct {
		name string
		in   RegisterUserInput
		want string
	}{
		{"password checked first", RegisterUserInput{Username: "bob", Email: "", Password: "short"}, "Password too short"},
		{"short username", RegisterUserInput{Username: "bob", Email: "b@x.io", Password: "secret123"}, "Username too short"},
		{"long username", RegisterUserInput{Username: strings.Repeat("u", 21), Email: "b@x.io", Password: "secret123"}, "Username too long"},
		{"long email", RegisterUserInput{Username: "bobby1", Email: strings.Repeat("e", 201), Password: "secret123"}, "Email too long"},
		{"duplicate username", RegisterUserInput{Username: "alice1", Email: "other@x.io", Password: "secret123"}, "Username exists"},
		{"duplicate email", RegisterUserInput{Username: "bobby1", Email: "alice1@example.com", Password: "secret123"}, "Email exists"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Register(ctx, tc.in)
			assert.Equal(t, tc.want, reason(t, err))
		})
	}

	assert.Len(t, f.publisher.events, 1)
}

func TestRegisterHashesPasswordAndPublishesEvent(t *testing.T) {
	f := newFixture(t)

	u := f.register(t, "alice1")
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, f.hasher.Verify("secret123", u.Password))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, payloads.UserRegisteredPayload{UserID: u.ID, Username: "alice1", Email: "alice1@example.com"}, f.publisher.events[0])
}

func TestRegisterWithoutEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.users.Register(ctx, RegisterUserInput{Username: "alice1", Password: "secretpw"})
	require.NoError(t, err)
	assert.Nil(t, first.Email)

	// несколько пользователей без email не конфликтуют по уникальности
	_, err = f.users.Register(ctx, RegisterUserInput{Username: "bobby1", Email: "  ", Password: "secretpw"})
	require.NoError(t, err)

	assert.Empty(t, f.publisher.events)
}

func TestRegisterSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	u := f.register(t, "alice1")
	got, err := f.users.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice1", got.Username)
}

func TestIssueAndResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice1")

	token, err := f.auth.Issue(ctx, "alice1", "secret123")
	require.NoError(t, err)

	resolved, err := f.auth.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)

	_, err = f.auth.Issue(ctx, "alice1", "wrongpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.auth.Issue(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.auth.Resolve(ctx, token+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.users.DeleteUser(ctx, u.ID))
	_, err = f.auth.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func verificationToken(t *testing.T, message string) string {
	t.Helper()
	_, token, found := strings.Cut(message, "/verification?token=")
	require.True(t, found, "no verification link in %q", message)
	return strings.TrimSpace(token)
}

func TestVerificationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice1")

	require.NoError(t, f.auth.SendVerification(ctx, f.publisher.events[0]))
	assert.Equal(t, "alice1@example.com", f.notifier.to)
	assert.Contains(t, f.notifier.message, "http://localhost:8000/verification?token=")

	token := verificationToken(t, f.notifier.message)

	// токен подтверждения не годится как access токен
	_, err := f.auth.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	verified, err := f.auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, verified.ID)
	assert.True(t, verified.IsVerified)

	// повторное подтверждение идемпотентно
	again, err := f.auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, again.IsVerified)

	access, err := f.auth.Issue(ctx, "alice1", "secret123")
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, access)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateUserPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice1")
	f.register(t, "bobby1")

	email := "new@example.com"
	updated, err := f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "alice1", updated.Username)
	assert.Equal(t, email, updated.EmailAddress())

	same := "alice1"
	_, err = f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{Username: &same})
	require.NoError(t, err)

	taken := "bobby1"
	_, err = f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{Username: &taken})
	assert.Equal(t, "Username exists", reason(t, err))

	short := "pw"
	_, err = f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{Password: &short})
	assert.Equal(t, "Password too short", reason(t, err))

	password := "newsecret9"
	updated, err = f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{Password: &password})
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify(password, updated.Password))

	verified := true
	updated, err = f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{IsVerified: &verified})
	require.NoError(t, err)
	assert.False(t, updated.IsVerified)

	_, err = f.users.UpdateUser(ctx, 999, domain.UserPatch{Email: &email})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUserTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice1")

	require.NoError(t, f.users.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, f.users.DeleteUser(ctx, u.ID), domain.ErrNotFound)
	_, err := f.users.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListValidatesPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.register(t, fmt.Sprintf("user%02d", i))
	}

	users, err := f.users.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user01", users[0].Username)

	_, err = f.users.ListUsers(ctx, -1, 10)
	assert.Error(t, err)
	_, err = f.users.ListUsers(ctx, 0, 0)
	assert.Error(t, err)
	_, err = f.gcs.ListGCs(ctx, 0, MaxLimit+1)
	assert.Error(t, err)
	_, err = f.products.ListProducts(ctx, 0, MaxLimit)
	assert.NoError(t, err)
}

func TestGCLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "alice1")

	_, err := f.gcs.CreateGC(ctx, nil, "club")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.gcs.CreateGC(ctx, owner, "")
	assert.Equal(t, "Name is required", reason(t, err))

	gc, err := f.gcs.CreateGC(ctx, owner, "club")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, gc.OwnerID)

	name := "renamed"
	updated, err := f.gcs.UpdateGC(ctx, gc.ID, domain.GCPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, owner.ID, updated.OwnerID)

	require.NoError(t, f.gcs.DeleteGC(ctx, gc.ID))
	assert.ErrorIs(t, f.gcs.DeleteGC(ctx, gc.ID), domain.ErrNotFound)
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "pen", Price: -1})
	assert.Equal(t, "Price must be non-negative", reason(t, err))
	_, err = f.products.CreateProduct(ctx, CreateProductInput{Name: "pen", Stock: -1})
	assert.Equal(t, "Stock must be non-negative", reason(t, err))

	p, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "pen", Category: "office", Price: 1.5, Stock: 3})
	require.NoError(t, err)

	stock := 10
	url := "http://evil.test/x.png"
	updated, err := f.products.UpdateProduct(ctx, p.ID, domain.ProductPatch{Stock: &stock, ImageURL: &url})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, "office", updated.Category)
	assert.Empty(t, updated.ImageURL)

	require.NoError(t, f.products.DeleteProduct(ctx, p.ID))
	_, err = f.products.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "pen"})
	require.NoError(t, err)

	_, err = f.products.UploadImage(ctx, p.ID, "notes.txt", "text/plain", strings.NewReader("hi"))
	assert.Equal(t, "File must be an image", reason(t, err))

	_, err = f.products.UploadImage(ctx, 999, "a.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.files.objects)

	updated, err := f.products.UploadImage(ctx, p.ID, "Photo.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.ImageURL, fmt.Sprintf("http://files.test/bucket/products/%d/", p.ID)))
	assert.True(t, strings.HasSuffix(updated.ImageURL, ".png"))
	require.Len(t, f.files.objects, 1)
	for _, v := range f.files.objects {
		assert.Equal(t, "image/png:png-bytes", v)
	}
}

func TestUploadImageWithoutFileStorage(t *testing.T) {
	db := dbtest.NewDB(t)
	uc := NewProductUseCase(storage.NewProductStorage(db, logger.Discard()), nil, logger.Discard())

	_, err := uc.UploadImage(context.Background(), 1, "a.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrFileStorageDisabled)
}

func TestProductFieldsFitColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "yacht", Price: 1e10})
	assert.Equal(t, "Price too large", reason(t, err))
	_, err = f.products.CreateProduct(ctx, CreateProductInput{Name: "sand", Stock: 3000000000})
	assert.Equal(t, "Stock too large", reason(t, err))

	p, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "pen", Price: 1.234, Stock: MaxStock})
	require.NoError(t, err)
	assert.Equal(t, 1.23, p.Price)

	stored, err := f.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Price, stored.Price)

	price := 9999999999.999
	_, err = f.products.UpdateProduct(ctx, p.ID, domain.ProductPatch{Price: &price})
	assert.Equal(t, "Price too large", reason(t, err))

	price = 2.005001
	updated, err := f.products.UpdateProduct(ctx, p.ID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 2.01, updated.Price)
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", imageExt("Photo.PNG"))
	assert.Equal(t, ".jpeg", imageExt("a.b.jpeg"))
	assert.Equal(t, "", imageExt("noext"))
	assert.Equal(t, "", imageExt("trailing."))
	assert.Equal(t, "", imageExt("x."+strings.Repeat("p", 400)))
	assert.Equal(t, "", imageExt("x.p%2Fng"))
}

func TestUploadImageCapsExtension(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "pen"})
	require.NoError(t, err)

	updated, err := f.products.UploadImage(ctx, p.ID, "pic."+strings.Repeat("g", 600), "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(updated.ImageURL), MaxImageURLLen)
	assert.NotContains(t, updated.ImageURL, "ggg")
}

type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies []string
}

func (h *countingHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verifies = append(h.verifies, hash)
	h.mu.Unlock()
	return h.PasswordHasher.Verify(password, hash)
}

func TestIssueUnknownUserStillComparesHash(t *testing.T) {
	db := dbtest.NewDB(t)
	log := logger.Discard()
	userStorage := storage.NewUserStorage(db, log)
	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasher(4)}
	uc := NewAuthUseCase(userStorage, hasher, auth.NewTokenManager("s"), &recordingNotifier{}, AuthConfig{AccessTTL: time.Minute}, log)

	for i := 0; i < 2; i++ {
		_, err := uc.Issue(context.Background(), "ghost1", "secret123")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	require.Len(t, hasher.verifies, 2)
	assert.NotEmpty(t, hasher.verifies[0])
	assert.Contains(t, hasher.verifies[0], "$2a$04$")
	assert.Equal(t, hasher.verifies[0], hasher.verifies[1])
}
