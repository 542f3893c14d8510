package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// commonPasswords are rejected outright when RejectVeryWeak is set.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"qwerty": {}, "qwerty123": {}, "qwertyuiop": {}, "letmein": {},
	"iloveyou": {}, "welcome1": {}, "skateboard": {}, "admin123": {},
}

// Validate checks the length policy in runes and, when enabled, the weak-pattern
// rules. It does not mutate input.
func (c Config) Validate(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < c.Policy.MinLength:
		return ErrPasswordTooShort
	case n > c.Policy.MaxLength:
		return ErrPasswordTooLong
	}
	if c.Policy.RejectVeryWeak && looksVeryWeak(password) {
		return ErrWeakPassword
	}
	return nil
}

// looksVeryWeak catches the obvious cases only: common passwords, one repeated
// character, short PINs and straight runs like "12345678" or "abcdefgh".
func looksVeryWeak(pw string) bool {
	s := strings.ToLower(strings.TrimSpace(pw))
	if s == "" {
		return true
	}
	if _, ok := commonPasswords[s]; ok {
		return true
	}

	runes := []rune(s)
	if strings.Count(s, string(runes[0])) == len(runes) {
		return true
	}
	if len(runes) < 12 && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return true
	}
	return isRun(runes)
}

// isRun reports whether every rune steps by the same +1 or -1 from the previous one.
func isRun(rs []rune) bool {
	if len(rs) < 2 {
		return false
	}
	step := rs[1] - rs[0]
	if step != 1 && step != -1 {
		return false
	}
	for i := 2; i < len(rs); i++ {
		if rs[i]-rs[i-1] != step {
			return false
		}
	}
	return true
}
