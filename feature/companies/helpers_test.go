package companies

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"company-manager/core/database"
	"company-manager/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// stubSource serves a fixed catalogue the way the portal does: filtered by
// search, paged by skip/limit, with an optionally inflated total.
type stubSource struct {
	mu        sync.Mutex
	companies []reconcile.Company
	total     int
	err       error
	calls     int
}

func (s *stubSource) ListCompanies(ctx context.Context, q reconcile.Query) (*reconcile.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	var items []reconcile.Company
	for _, c := range s.companies {
		if q.Search == "" || strings.Contains(c.ShortName, q.Search) || strconv.FormatInt(c.Code, 10) == q.Search {
			items = append(items, c)
		}
	}
	total := len(items)
	if q.Search == "" && s.total > 0 {
		total = s.total
	}
	if q.Skip >= len(items) {
		return &reconcile.Page{Total: total}, nil
	}
	end := min(q.Skip+q.Limit, len(items))
	return &reconcile.Page{Items: items[q.Skip:end], Total: total}, nil
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testCompany(code int64, name string) reconcile.Company {
	return reconcile.Company{
		ID:        fmt.Sprintf("id-%d", code),
		Code:      code,
		ShortName: name,
		LegalName: name + " LTDA",
		CNPJ:      fmt.Sprintf("%014d", code),
	}
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	repo := NewRepository(setupSQLite(t))
	require.NoError(t, repo.Prepare(context.Background()))
	return repo
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}
