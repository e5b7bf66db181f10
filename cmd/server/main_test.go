package main

import (
	"testing"

	"github.com/sirupsen/logrus"

	"pizzapos/internal/config"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "short"}); err == nil {
		t.Fatalf("expected short AUTH_SECRET to be rejected")
	}
	if err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminUsername: "admin", AdminPassword: "1234"}); err == nil {
		t.Fatalf("expected short ADMIN_PASSWORD to be rejected")
	}
	if err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminPassword: "long-enough-pass"}); err == nil {
		t.Fatalf("expected missing ADMIN_USERNAME to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, AdminUsername: "admin", AdminPassword: "long-enough-pass"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidateSecurityConfigAllowsDisabledAuth(t *testing.T) {
	if err := validateSecurityConfig(config.Config{}); err != nil {
		t.Fatalf("expected open mode to pass, got %v", err)
	}
}

func TestConfigureLogging(t *testing.T) {
	log := logrus.New()

	if err := configureLogging(log, config.Config{LogLevel: "debug", LogFormat: "json"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter, got %T", log.Formatter)
	}

	if err := configureLogging(log, config.Config{LogLevel: "loud"}); err == nil {
		t.Fatalf("expected unknown level to be rejected")
	}
	if err := configureLogging(log, config.Config{LogLevel: "info", LogFormat: "xml"}); err == nil {
		t.Fatalf("expected unknown format to be rejected")
	}
}
