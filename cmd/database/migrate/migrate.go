package migration

import (
	"fmt"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"gorm.io/gorm"
)

// Models lists every table in creation order.
func Models() []interface{} {
	return []interface{}{
		&entities.User{},
		&entities.Group{},
		&entities.GroupParticipant{},
		&entities.Analysis{},
		&entities.Harvest{},
		&entities.Proposal{},
		&entities.Notification{},
		&entities.NotificationOutbox{},
		&entities.PushSubscription{},
		&entities.Comment{},
		&entities.Like{},
	}
}

func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	}

	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrating %T: %w", model, err)
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
