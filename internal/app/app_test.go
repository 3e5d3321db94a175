package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/jobboard/jobboardtest"
	"github.com/jobdeck/jobdeck/internal/session"
)

func writeConfig(t *testing.T) (configPath, sessionPath string) {
	t.Helper()
	dir := t.TempDir()
	sessionPath = filepath.Join(dir, "session.toml")
	configPath = filepath.Join(dir, "config.toml")
	body := "api_url = \"http://jobs.test/api\"\n" +
		"poll_seconds = 5\n" +
		"session_file = \"" + sessionPath + "\"\n" +
		"log_file = \"" + filepath.Join(dir, "jobdeck.log") + "\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, sessionPath
}

func TestNewEnv_LoggedOut(t *testing.T) {
	configPath, _ := writeConfig(t)
	env, err := NewEnv(Options{ConfigPath: configPath, LogWriter: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	defer env.Close()

	if env.LoggedIn || env.Role() != "" {
		t.Fatalf("LoggedIn = %v, role = %q", env.LoggedIn, env.Role())
	}
	if _, ok := env.API.(*jobboard.Client); !ok {
		t.Fatalf("API = %T, want *jobboard.Client", env.API)
	}
	if env.Poller.Interval() != 5*time.Second {
		t.Fatalf("poll interval = %v", env.Poller.Interval())
	}
}

func TestNewEnv_PollFlagOverridesConfig(t *testing.T) {
	configPath, _ := writeConfig(t)
	env, err := NewEnv(Options{ConfigPath: configPath, PollEvery: 30, LogWriter: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	defer env.Close()
	if env.Poller.Interval() != 30*time.Second {
		t.Fatalf("poll interval = %v, want 30s", env.Poller.Interval())
	}
}

func TestNewEnv_LogFileCreated(t *testing.T) {
	configPath, _ := writeConfig(t)
	env, err := NewEnv(Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	env.Log.Info(context.Background(), "hello")
	if err := env.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(env.Config.LogFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Fatalf("log = %q", data)
	}
}

func TestLoginLogout(t *testing.T) {
	configPath, sessionPath := writeConfig(t)
	fake := &jobboardtest.Fake{
		Token:   "tok",
		Profile: jobboard.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: jobboard.RoleAdmin},
	}
	env, err := NewEnv(Options{ConfigPath: configPath, LogWriter: &bytes.Buffer{}, API: fake})
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	defer env.Close()
	ctx := context.Background()

	if _, err := env.Login(ctx, "ann@example.com", ""); !errors.Is(err, jobboard.ErrUnauthorized) {
		t.Fatalf("bad login error = %v", err)
	}

	sess, err := env.Login(ctx, "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sess.Token != "tok" || sess.Role() != jobboard.RoleAdmin {
		t.Fatalf("session = %+v", sess)
	}
	stored, err := session.Load(sessionPath)
	if err != nil || stored.Token != "tok" {
		t.Fatalf("stored session = %+v, %v", stored, err)
	}

	// A second process picks the session up.
	env2, err := NewEnv(Options{ConfigPath: configPath, LogWriter: &bytes.Buffer{}, API: fake})
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	if !env2.LoggedIn || env2.Role() != jobboard.RoleAdmin {
		t.Fatalf("env2 LoggedIn = %v role = %q", env2.LoggedIn, env2.Role())
	}

	if err := env.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := session.Load(sessionPath); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("Load after logout = %v", err)
	}
}

func TestCheckAuth_ClearsRejectedSession(t *testing.T) {
	configPath, sessionPath := writeConfig(t)
	if err := session.Save(sessionPath, session.Session{Token: "stale", User: session.User{Role: "seeker"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	env, err := NewEnv(Options{ConfigPath: configPath, LogWriter: &bytes.Buffer{}, API: &jobboardtest.Fake{}})
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	ctx := context.Background()

	other := errors.New("timeout")
	if got := env.CheckAuth(ctx, other); got != other || !env.LoggedIn {
		t.Fatalf("CheckAuth(other) = %v, LoggedIn = %v", got, env.LoggedIn)
	}

	unauthorized := &jobboard.APIError{Status: 401, Message: "jwt expired"}
	if got := env.CheckAuth(ctx, unauthorized); !errors.Is(got, jobboard.ErrUnauthorized) {
		t.Fatalf("CheckAuth = %v", got)
	}
	if env.LoggedIn {
		t.Fatal("session still active after 401")
	}
	if _, err := session.Load(sessionPath); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("session file after 401: %v", err)
	}
}

func TestPollerRefresh_ClearsRejectedSession(t *testing.T) {
	configPath, sessionPath := writeConfig(t)
	if err := session.Save(sessionPath, session.Session{Token: "stale", User: session.User{Role: "seeker"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fake := &jobboardtest.Fake{}
	env, err := NewEnv(Options{ConfigPath: configPath, LogWriter: &bytes.Buffer{}, API: fake})
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	defer env.Close()

	fake.SetError("FetchMyApplications", &jobboard.APIError{Status: 401, Message: "jwt expired"})
	if err := env.Poller.Refresh(context.Background()); !errors.Is(err, jobboard.ErrUnauthorized) {
		t.Fatalf("Refresh = %v", err)
	}
	if env.LoggedIn {
		t.Fatal("session still active after a rejected poll")
	}
	if _, err := session.Load(sessionPath); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("session file after 401: %v", err)
	}
}

func TestRegisterStoresSession(t *testing.T) {
	configPath, sessionPath := writeConfig(t)
	fake := &jobboardtest.Fake{Token: "new-token"}
	env, err := NewEnv(Options{ConfigPath: configPath, LogWriter: &bytes.Buffer{}, API: fake})
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	defer env.Close()

	sess, err := env.Register(context.Background(), jobboard.Registration{
		Name: "Sam", Email: "sam@example.com", Password: "pw", MobileNumber: "555", Role: jobboard.RoleSeeker,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !env.LoggedIn || env.Role() != jobboard.RoleSeeker {
		t.Fatalf("LoggedIn = %v role = %q", env.LoggedIn, env.Role())
	}
	stored, err := session.Load(sessionPath)
	if err != nil || stored.User.Email != "sam@example.com" || stored.Token != sess.Token {
		t.Fatalf("stored session = %+v, %v", stored, err)
	}
}
