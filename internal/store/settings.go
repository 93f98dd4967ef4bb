package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/timekeep/internal/dayspan"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

type Setting struct {
	Key   string
	Value string
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (s *Store) intSetting(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BoundaryConfig reads the user's day-boundary settings. No validation
// beyond integer parsing happens here; constraining inputs is the
// settings form's job.
func (s *Store) BoundaryConfig() dayspan.Config {
	return dayspan.Config{
		StartHour:        s.intSetting("day_start_hour", 0),
		EndHourExtension: s.intSetting("day_end_extension", 0),
	}
}

func (s *Store) SetBoundaryConfig(cfg dayspan.Config) error {
	if err := s.SetSetting("day_start_hour", strconv.Itoa(cfg.StartHour)); err != nil {
		return err
	}
	return s.SetSetting("day_end_extension", strconv.Itoa(cfg.EndHourExtension))
}

// IdleTimeout reads the configured inactivity timeout.
func (s *Store) IdleTimeout() time.Duration {
	return time.Duration(s.intSetting("idle_timeout", 300)) * time.Second
}

// DailyGoal reads the configured daily goal in seconds.
func (s *Store) DailyGoal() int64 {
	return int64(s.intSetting("daily_goal", 28800))
}
