package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry initializes crash reporting. Only called when the user
// opted in via the first-run prompt or settings.json.
func InitSentry(dsn string) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      sentryEnvironment(),
		Release:          "tsql@" + appVersion,
		// Never report the local host name.
		ServerName:       "-",
		TracesSampleRate: 0.1,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	// Stable per-machine ID so crash counts can distinguish one user
	// from many.
	if id, err := os.UserCacheDir(); err == nil {
		sentry.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetUser(sentry.User{ID: id})
		})
	}
	return nil
}

// sentryEnvironment reports "development" when running from a source
// checkout or with TSQL_ENV=dev, otherwise "production".
func sentryEnvironment() string {
	if _, err := os.Stat(".git"); err == nil {
		return "development"
	}
	if os.Getenv("TSQL_ENV") == "dev" {
		return "development"
	}
	return "production"
}

// FlushAndShutdown drains pending Sentry events before exit.
func FlushAndShutdown() {
	sentry.Flush(5 * time.Second)
}

// flushTrail moves the buffered breadcrumb trail into the Sentry scope
// so the next captured event carries it.
func flushTrail() {
	if breadcrumbs != nil {
		breadcrumbs.Flush()
	}
}

// CaptureError reports err together with the buffered breadcrumb
// trail. A nil err is ignored.
func CaptureError(err error) {
	if err == nil {
		return
	}
	flushTrail()
	sentry.CaptureException(err)
}

// CaptureMessage reports a plain message with the breadcrumb trail.
func CaptureMessage(message string) {
	flushTrail()
	sentry.CaptureMessage(message)
}
