package db

import "gorm.io/gorm"

// ChangeChannel 是 drinks 表变更时 pg_notify 使用的频道名，payload 为 group_id。
const ChangeChannel = "drink_changes"

const changeTriggerFunction = `
CREATE OR REPLACE FUNCTION notify_drink_change() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'DELETE' THEN
		PERFORM pg_notify('` + ChangeChannel + `', OLD.group_id);
		RETURN OLD;
	END IF;
	PERFORM pg_notify('` + ChangeChannel + `', NEW.group_id);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;`

const dropChangeTrigger = `DROP TRIGGER IF EXISTS drinks_notify_change ON drinks`

const createChangeTrigger = `
CREATE TRIGGER drinks_notify_change
AFTER INSERT OR UPDATE OR DELETE ON drinks
FOR EACH ROW EXECUTE FUNCTION notify_drink_change()`

func installChangeTrigger(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(changeTriggerFunction).Error; err != nil {
			return err
		}
		if err := tx.Exec(dropChangeTrigger).Error; err != nil {
			return err
		}
		return tx.Exec(createChangeTrigger).Error
	})
}
