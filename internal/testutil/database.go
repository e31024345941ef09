// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	migration "github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/cmd/database/migrate"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with every table
// migrated. A single connection serialises writers the way a row lock would.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(migration.Models()...))
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, name, role string) *entities.User {
	t.Helper()

	u := &entities.User{
		Name:         name,
		Email:        domain.NormalizeEmail(strings.ReplaceAll(name, " ", ".") + "@example.com"),
		PasswordHash: "x",
		Role:         role,
		Phone:        "+55 31 90000-0000",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateGroup inserts a group owned by owner with the given members.
func CreateGroup(t *testing.T, db *gorm.DB, name string, owner *entities.User, members ...*entities.User) *entities.Group {
	t.Helper()

	g := &entities.Group{Name: name, CreatedBy: owner.ID, Stock: 10}
	require.NoError(t, db.Create(g).Error)
	for i, m := range members {
		require.NoError(t, db.Create(&entities.GroupParticipant{
			GroupID:  g.ID,
			UserID:   m.ID,
			Position: time.Now().UnixNano() + int64(i),
		}).Error)
	}
	return g
}
