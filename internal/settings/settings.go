package settings

import (
	"chatarchive-backend/internal/models"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"
)

const settingsRowID = 1

// Service persists the application settings as a single json row. Stored
// values are decoded on top of the defaults so settings written by an older
// version keep every newer field at its default.
type Service struct {
	db    *sql.DB
	sugar *zap.SugaredLogger
}

func New(db *sql.DB, sugar *zap.SugaredLogger) *Service {
	return &Service{db: db, sugar: sugar}
}

func Defaults() models.AppSettings {
	return models.AppSettings{
		Export: models.ExportSettings{
			DefaultFormat:       "Json",
			DefaultMessageLimit: 1000,
			IncludeMedia:        true,
			IncludeEmbeds:       true,
			IncludeReactions:    true,
			IncludeThreads:      "All",
			ReuseMedia:          true,
			Markdown:            false,
		},
		Display: models.DisplaySettings{
			Theme:          "dark",
			FontSize:       "medium",
			ShowImages:     true,
			ShowEmbeds:     true,
			ShowReactions:  true,
			ShowTimestamps: true,
			CompactMode:    false,
		},
		General: models.GeneralSettings{
			AutoSave:      true,
			Notifications: true,
			Language:      "en",
		},
	}
}

func (s *Service) Get() (models.AppSettings, error) {
	settings := Defaults()

	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE id = ?", settingsRowID).Scan(&value)
	if err == sql.ErrNoRows {
		return settings, nil
	} else if err != nil {
		return settings, err
	}

	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		s.sugar.Errorf("Stored settings are corrupt, falling back to defaults: %v", err)
		return Defaults(), nil
	}

	return settings, nil
}

func (s *Service) Update(settings models.AppSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	// one transaction, a failed write keeps the previous row
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM settings WHERE id = ?", settingsRowID); err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT INTO settings VALUES(?, ?)", settingsRowID, string(value)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Service) Reset() error {
	return s.Update(Defaults())
}
