package connstore

import (
	"time"

	"github.com/zalando/go-keyring"
)

// ServiceName is the fixed OS keychain service name for tsql.
const ServiceName = "tsql"

// DefaultKeychainTimeout bounds how long a keychain lookup may block
// before the caller gives up and falls back to prompting for a
// password. Keychain access can block indefinitely when the OS shows a
// permission dialog.
const DefaultKeychainTimeout = 500 * time.Millisecond

// SetPassword stores password in the OS keychain under the fixed
// service name, keyed by connection name.
func SetPassword(connectionName, password string) error {
	return keyring.Set(ServiceName, connectionName, password)
}

// DeletePassword removes a stored password.
func DeletePassword(connectionName string) error {
	return keyring.Delete(ServiceName, connectionName)
}

// GetPasswordWithTimeout looks up a password on a detached goroutine and
// races it against timeout. On timeout the goroutine is left running
// (it cannot be killed) and GetPasswordWithTimeout returns (nil, nil) —
// downstream, this causes a normal password prompt rather than a UI
// hang.
func GetPasswordWithTimeout(connectionName string, timeout time.Duration) (*string, error) {
	type result struct {
		password string
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		pwd, err := keyring.Get(ServiceName, connectionName)
		ch <- result{password: pwd, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if r.err == keyring.ErrNotFound {
				return nil, nil
			}
			return nil, r.err
		}
		return &r.password, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

func ResolvePassword(e Entry, getenv func(string) string) (*string, error) {
	if e.PasswordInKeychain {
		pwd, err := GetPasswordWithTimeout(e.Name, DefaultKeychainTimeout)
		if err != nil {
			return nil, err
		}
		if pwd != nil {
			return pwd, nil
		}
		// Timed out or not found: fall through to env/none rather than
		// erroring, matching "downstream causes a password prompt".
	}
	if e.PasswordEnv != "" {
		if v := getenv(e.PasswordEnv); v != "" {
			return &v, nil
		}
	}
	return nil, nil
}
