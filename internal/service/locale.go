package service

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// shortMonthLabel renders "oct 2026".
func shortMonthLabel(t time.Time) string {
	name := []rune(monthNames[t.Month()-1])
	return fmt.Sprintf("%s %d", string(name[:3]), t.Year())
}

// longMonthLabel renders "octubre de 2026".
func longMonthLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", monthNames[t.Month()-1], t.Year())
}
