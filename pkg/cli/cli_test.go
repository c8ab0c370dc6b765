package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "streamverse-backend/api"
	"streamverse-backend/pkg/config"
	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return &config.Config{
		APIBaseURL:     url,
		LocalStorePath: filepath.Join(t.TempDir(), "local.db"),
		RequestTimeout: 500 * time.Millisecond,
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(testConfig(t))
	require.NotNil(t, cmd)
	assert.Equal(t, "streamverse", cmd.Use)

	for _, name := range []string{"list", "add", "update", "delete", "categories"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cfg := testConfig(t)
	cmd := NewRootCommand(cfg)

	apiFlag := cmd.PersistentFlags().Lookup("api")
	require.NotNil(t, apiFlag)
	assert.Equal(t, cfg.APIBaseURL, apiFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	_, err := run(t, cfg, "list", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestCLI_FallsBackToLocalStore(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "list", "--format", "json")
	require.NoError(t, err)
	var seeded []models.Site
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, models.DefaultSites(), seeded)

	out, err = run(t, cfg, "add", "--format", "json",
		"--name", "Foo", "--url", "https://foo.test", "--description", "d", "--category", "Movies")
	require.NoError(t, err)
	var created models.Site
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)

	out, err = run(t, cfg, "update", created.ID, "--name", "Bar")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Bar")

	out, err = run(t, cfg, "list", "--offline", "--search", "bar", "--format", "json")
	require.NoError(t, err)
	var found []models.Site
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
	assert.Equal(t, "https://foo.test", found[0].URL, "unset flags keep their values")

	out, err = run(t, cfg, "delete", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+created.ID)

	_, err = run(t, cfg, "delete", created.ID)
	assert.ErrorIs(t, err, database.ErrSiteNotFound)
}

func TestCLI_AddRejectsInvalidInput(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "add", "--name", "Foo", "--url", "foo.test", "--description", "d", "--category", "Movies")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCLI_Categories(t *testing.T) {
	out, err := run(t, testConfig(t), "categories", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, string(models.CategoryMovies)+" (2)")
	assert.Contains(t, out, models.CategoryMovies.Accent())
}

// seedLocal writes one site into the local store only and returns it.
func seedLocal(t *testing.T, cfg *config.Config) models.Site {
	t.Helper()
	ctx := context.Background()
	slots, err := database.OpenSQLiteSlots(cfg.LocalStorePath)
	require.NoError(t, err)
	local := database.NewLocalStorage(slots, database.DefaultLocalSlot)
	defer local.Close()
	require.NoError(t, local.Initialize(ctx))

	site, err := local.AddSite(ctx, models.SiteInput{
		Name: "Foo", URL: "https://foo.test", Description: "d",
		Category: models.CategoryMovies, ImageURL: "https://foo.test/logo.png",
	})
	require.NoError(t, err)
	return *site
}

// liveAPI serves the real router over an empty store.
func liveAPI(t *testing.T) string {
	t.Helper()
	db := database.NewKVDatabase(database.NewMemoryKVClient(), database.DefaultKVKey, database.WithSeed(nil))
	require.NoError(t, db.Initialize(context.Background()))
	srv := httptest.NewServer(handler.NewRouter(&config.Config{Environment: "test", AllowedOrigins: []string{"*"}}, db))
	t.Cleanup(srv.Close)
	return srv.URL
}

func localSite(t *testing.T, cfg *config.Config, id string) models.Site {
	t.Helper()
	out, err := run(t, cfg, "list", "--offline", "--format", "json")
	require.NoError(t, err)
	var sites []models.Site
	require.NoError(t, json.Unmarshal([]byte(out), &sites))
	site, ok := database.FindSite(sites, id)
	require.True(t, ok, "site %s not in local store", id)
	return *site
}

func TestCLI_UpdateSiteOnlyInLocalStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIBaseURL = liveAPI(t)
	site := seedLocal(t, cfg)

	out, err := run(t, cfg, "update", site.ID, "--name", "Bar")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Bar")
	assert.Equal(t, "Bar", localSite(t, cfg, site.ID).Name)
}

func TestCLI_UpdateMergesChangedFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(models.Site) models.Site
	}{
		{
			name: "name only",
			args: []string{"--name", "Bar"},
			want: func(s models.Site) models.Site { s.Name = "Bar"; return s },
		},
		{
			name: "category and url",
			args: []string{"--category", "Anime", "--url", "http://bar.test"},
			want: func(s models.Site) models.Site {
				s.Category = models.CategoryAnime
				s.URL = "http://bar.test"
				return s
			},
		},
		{
			name: "clearing the image",
			args: []string{"--image", ""},
			want: func(s models.Site) models.Site { s.ImageURL = ""; return s },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			site := seedLocal(t, cfg)

			_, err := run(t, cfg, append([]string{"update", site.ID}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want(site), localSite(t, cfg, site.ID))
		})
	}
}

func TestCLI_UpdateAndDeleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantIs  error
		invalid bool
	}{
		{name: "update unknown id", args: []string{"update", "missing", "--name", "Bar"}, wantIs: database.ErrSiteNotFound},
		{name: "delete unknown id", args: []string{"delete", "missing"}, wantIs: database.ErrSiteNotFound},
		{name: "update with bad url", args: []string{"update", "", "--url", "bar.test"}, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			site := seedLocal(t, cfg)
			args := tt.args
			if args[1] == "" {
				args = append([]string{args[0], site.ID}, args[2:]...)
			}

			_, err := run(t, cfg, args...)
			if tt.invalid {
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, site, localSite(t, cfg, site.ID), "nothing written")
				return
			}
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}
