// Package validator holds the free-text validators of the wizard.
// Each one parses and range-checks raw input and returns either the normalized
// value or a *domain.ValidationError carrying an operator-facing reason.
package validator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// GiB is the traffic unit used by the wizard.
const GiB int64 = 1024 * 1024 * 1024

const (
	UsernameMinLen = 3
	UsernameMaxLen = 36

	ExpireDaysMin = 1
	ExpireDaysMax = 3650

	HWIDMin = 0
	HWIDMax = 100

	TrafficGBMin = 1
	TrafficGBMax = 100000
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func reject(field, reason string) error {
	return &domain.ValidationError{Field: field, Reason: reason}
}

// Username accepts 3-36 characters from [A-Za-z0-9_].
func Username(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) < UsernameMinLen || len(s) > UsernameMaxLen {
		return "", reject("username", "Username must be 3 to 36 characters long.")
	}
	if !usernamePattern.MatchString(s) {
		return "", reject("username", "Username may contain only letters, digits and _.")
	}
	return s, nil
}

// ExpireDays accepts a whole number of days in [1, 3650].
func ExpireDays(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < ExpireDaysMin || n > ExpireDaysMax {
		return 0, reject("expire_days", "Enter a number of days (1 - 3650).")
	}
	return n, nil
}

// TelegramID accepts any 64-bit integer.
func TelegramID(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, reject("telegram_id", "Telegram ID must be a number.")
	}
	return n, nil
}

// HWIDLimit accepts a device limit in [0, 100].
func HWIDLimit(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < HWIDMin || n > HWIDMax {
		return 0, reject("hwid_device_limit", "HWID limit must be a number (0 - 100).")
	}
	return n, nil
}

// TrafficGB accepts a whole number of GB in [1, 100000] and returns bytes.
func TrafficGB(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < TrafficGBMin || n > TrafficGBMax {
		return 0, reject("traffic_limit_bytes", "Enter a number of GB (1 - 100000).")
	}
	return n * GiB, nil
}

// Text accepts any non-blank input and trims it.
func Text(field, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", reject(field, "Value must not be empty.")
	}
	return s, nil
}
