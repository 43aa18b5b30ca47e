// file: database/notify.go
package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// MembershipChannel carries change events for the tables that decide who is
// already on a project.
const MembershipChannel = "project_members_changes"

// membershipTables are watched by the change trigger. Any write to them can
// change the busy set.
var membershipTables = []string{"project_members", "projects", "hackathons"}

const notifyFunction = `CREATE OR REPLACE FUNCTION notify_membership_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('` + MembershipChannel + `', json_build_object('table', TG_TABLE_NAME, 'op', TG_OP, 'at', now())::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

// changeTriggerSQL lists the statements that install the notify trigger.
func changeTriggerSQL() []string {
	stmts := []string{notifyFunction}
	for _, table := range membershipTables {
		name := table + "_notify_change"
		stmts = append(stmts,
			fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s", name, table),
			fmt.Sprintf("CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH STATEMENT EXECUTE FUNCTION notify_membership_change()", name, table),
		)
	}
	return stmts
}

// InstallChangeTriggers makes PostgreSQL announce membership writes from any
// client on MembershipChannel. Other dialects are left alone.
func InstallChangeTriggers(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range changeTriggerSQL() {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("install change trigger: %w", err)
			}
		}
		slog.Info("Membership change triggers installed", "channel", MembershipChannel)
		return nil
	})
}
