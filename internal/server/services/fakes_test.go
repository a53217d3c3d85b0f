package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/dbx"
	"github.com/dmitrijs2005/gophidentity/internal/logging"
	"github.com/dmitrijs2005/gophidentity/internal/server/config"
	"github.com/dmitrijs2005/gophidentity/internal/server/hasher"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/roles"
	usersrepo "github.com/dmitrijs2005/gophidentity/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- users ---

// fakeUsers keeps rows in memory. The in-memory capabilities come from the
// real repository, which never touches its handle for them.
type fakeUsers struct {
	*usersrepo.PostgresRepository

	mu         sync.Mutex
	rows       map[string]models.User
	membership map[string]map[string]bool
	roleNames  map[string]bool
	updates    int
	updateErr  error
	findErr    error
	createErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		PostgresRepository: usersrepo.NewPostgresRepository(nil),
		rows:               map[string]models.User{},
		membership:         map[string]map[string]bool{},
		roleNames:          map[string]bool{},
	}
}

func (f *fakeUsers) put(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	cp.MarkClean()
	f.rows[u.ID] = cp
}

func (f *fakeUsers) get(id string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, row := range f.rows {
		if row.UserName == u.UserName {
			return common.ErrorAlreadyExists
		}
	}
	cp := *u
	cp.MarkClean()
	f.rows[u.ID] = cp
	u.MarkClean()
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[u.ID]; !ok {
		return common.ErrorNotFound
	}
	f.updates++
	cp := *u
	cp.MarkClean()
	f.rows[u.ID] = cp
	u.MarkClean()
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, u.ID)
	return nil
}

func (f *fakeUsers) find(match func(models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, row := range f.rows {
		if match(row) {
			cp := row
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.ID == id })
}

func (f *fakeUsers) FindByName(ctx context.Context, name string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.UserName == name })
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.Email != "" && u.Email == email })
}

func (f *fakeUsers) AddLogin(context.Context, *models.User, models.UserLoginInfo) error    { return nil }
func (f *fakeUsers) RemoveLogin(context.Context, *models.User, models.UserLoginInfo) error { return nil }
func (f *fakeUsers) GetLogins(context.Context, *models.User) ([]models.UserLoginInfo, error) {
	return nil, nil
}
func (f *fakeUsers) FindByLogin(context.Context, models.UserLoginInfo) (*models.User, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) AddToRole(ctx context.Context, u *models.User, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.roleNames[roleName] {
		return nil
	}
	if f.membership[u.ID] == nil {
		f.membership[u.ID] = map[string]bool{}
	}
	f.membership[u.ID][roleName] = true
	return nil
}

func (f *fakeUsers) RemoveFromRole(ctx context.Context, u *models.User, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.membership[u.ID], roleName)
	return nil
}

func (f *fakeUsers) GetRoles(ctx context.Context, u *models.User) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0)
	for name := range f.membership[u.ID] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeUsers) IsInRole(ctx context.Context, u *models.User, roleName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.membership[u.ID][roleName], nil
}

func (f *fakeUsers) GetClaims(context.Context, *models.User) ([]models.Claim, error) { return nil, nil }
func (f *fakeUsers) AddClaim(context.Context, *models.User, models.Claim) error      { return nil }
func (f *fakeUsers) RemoveClaim(context.Context, *models.User, models.Claim) error   { return nil }

// --- roles ---

type fakeRoles struct {
	mu        sync.Mutex
	rows      map[string]models.Role
	perms     map[string]map[string]bool
	users     *fakeUsers
	deleteErr error
}

func newFakeRoles(users *fakeUsers) *fakeRoles {
	return &fakeRoles{rows: map[string]models.Role{}, perms: map[string]map[string]bool{}, users: users}
}

func (f *fakeRoles) Create(ctx context.Context, r *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Name == r.Name {
			return common.ErrorAlreadyExists
		}
	}
	f.rows[r.ID] = *r
	if f.users != nil {
		f.users.mu.Lock()
		f.users.roleNames[r.Name] = true
		f.users.mu.Unlock()
	}
	return nil
}

func (f *fakeRoles) Update(ctx context.Context, r *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[r.ID]; !ok {
		return common.ErrorNotFound
	}
	f.rows[r.ID] = *r
	return nil
}

func (f *fakeRoles) Delete(ctx context.Context, r *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, r.ID)
	return nil
}

func (f *fakeRoles) FindByID(ctx context.Context, id string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		return &r, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRoles) FindByName(ctx context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Name == name {
			cp := r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRoles) filtered(search string) []models.Role {
	out := make([]models.Role, 0)
	for _, r := range f.rows {
		if search == "" || strings.Contains(strings.ToLower(r.Name), strings.ToLower(search)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeRoles) List(ctx context.Context, opts roles.ListOptions) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.filtered(opts.Search)
	if opts.Offset > len(all) {
		return []models.Role{}, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (f *fakeRoles) Count(ctx context.Context, search string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(search)), nil
}

func (f *fakeRoles) UsersInRole(ctx context.Context, roleID string) ([]models.UserSummary, error) {
	return []models.UserSummary{}, nil
}

func (f *fakeRoles) UsersNotInRole(ctx context.Context, roleID string) ([]models.UserSummary, error) {
	return []models.UserSummary{}, nil
}

func (f *fakeRoles) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeRoles) GetPermissions(ctx context.Context, roleID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0)
	for p := range f.perms[roleID] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeRoles) AddPermission(ctx context.Context, roleID, permission string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.perms[roleID] == nil {
		f.perms[roleID] = map[string]bool{}
	}
	f.perms[roleID][permission] = true
	return nil
}

func (f *fakeRoles) RemovePermissions(ctx context.Context, roleID string, permissions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range permissions {
		delete(f.perms[roleID], p)
	}
	return nil
}

// --- manager & helpers ---

type fakeRepoManager struct {
	u *fakeUsers
	r *fakeRoles
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Store           { return m.u }
func (m *fakeRepoManager) Roles(db dbx.DBTX) roles.Store               { return m.r }

func newRepoManager() *fakeRepoManager {
	u := newFakeUsers()
	return &fakeRepoManager{u: u, r: newFakeRoles(u)}
}

type countingRecorder struct {
	mu            sync.Mutex
	verifications map[string]int
	signIns       map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{verifications: map[string]int{}, signIns: map[string]int{}}
}

func (c *countingRecorder) ObserveVerification(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifications[result]++
}

func (c *countingRecorder) ObserveSignIn(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signIns[result]++
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newUserManager(t *testing.T, rm *fakeRepoManager, rec *countingRecorder) *UserManager {
	t.Helper()
	db, _ := newSQLMockDB(t)
	m := NewUserManager(db, rm, hasher.New(hasher.Config{Iterations: 1000}), testConfig(), logging.Nop{}, rec)
	m.now = func() time.Time { return testNow }
	return m
}
