package dao

import (
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const notifyFunctionSQL = `
CREATE OR REPLACE FUNCTION notify_market_update() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify(%s, json_build_object('id', NEW.id, 'type', NEW.type)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`

const notifyTriggerSQL = `
CREATE TRIGGER market_update_notify
	AFTER UPDATE ON market
	FOR EACH ROW EXECUTE FUNCTION notify_market_update()`

// InitTables migrates the market table and installs the trigger that
// announces every row update on notifyChannel.
func InitTables(db *gorm.DB, notifyChannel string) error {
	if err := db.AutoMigrate(&MarketItem{}); err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	statements := []string{
		fmt.Sprintf(notifyFunctionSQL, pq.QuoteLiteral(notifyChannel)),
		"DROP TRIGGER IF EXISTS market_update_notify ON market",
		notifyTriggerSQL,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install notify trigger -> %w", err)
		}
	}

	return nil
}
