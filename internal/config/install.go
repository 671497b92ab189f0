package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avast/retry-go/v4"

	"mediadeck/internal/constants"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
	"mediadeck/pkg/logger"
)

// ManifestFetcher fetches an addon manifest given its base URL.
type ManifestFetcher interface {
	Manifest(ctx context.Context, baseURL string) (*models.Manifest, error)
}

// Installer performs the provider CRUD operations: install by manifest URL,
// uninstall, catalog toggling and metadata-provider settings. Every mutation
// is validated before any state is written, so a rejected operation leaves
// the stored configuration untouched.
type Installer struct {
	store   Store
	fetcher ManifestFetcher
	logger  logger.Logger
}

// NewInstaller creates an Installer over the given store and manifest fetcher.
func NewInstaller(store Store, fetcher ManifestFetcher, log logger.Logger) *Installer {
	return &Installer{store: store, fetcher: fetcher, logger: log}
}

// NormalizeManifestURL canonicalizes a user-supplied addon URL: the
// stremio:// scheme maps to https, a missing manifest.json segment is
// appended, and the returned base URL has the manifest.json segment stripped.
func NormalizeManifestURL(raw string) (manifestURL, baseURL string, err error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "stremio://") {
		raw = "https://" + strings.TrimPrefix(raw, "stremio://")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid addon URL %q", raw)
	}

	raw = strings.TrimSuffix(raw, "/")
	if !strings.HasSuffix(raw, "/manifest.json") {
		raw += "/manifest.json"
	}
	return raw, strings.TrimSuffix(raw, "/manifest.json"), nil
}

// Install fetches and validates the manifest at the given URL and appends the
// addon to the provider list with all declared catalogs enabled.
func (in *Installer) Install(ctx context.Context, rawURL string) (*Provider, error) {
	_, baseURL, err := NormalizeManifestURL(rawURL)
	if err != nil {
		return nil, apperrors.NewConfigValidation("invalid manifest URL", err)
	}

	manifest, err := retry.DoWithData(
		func() (*models.Manifest, error) { return in.fetcher.Manifest(ctx, baseURL) },
		retry.Context(ctx),
		retry.Attempts(constants.InstallRetryAttempts),
		retry.Delay(constants.InstallRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, apperrors.NewConfigValidation("could not fetch addon manifest", err)
	}

	if manifest.ID == "" || manifest.Version == "" || manifest.Name == "" {
		return nil, apperrors.NewConfigValidation("manifest is missing id, version or name", nil)
	}

	settings, err := in.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.Provider(manifest.ID) != nil {
		return nil, apperrors.NewConfigValidation(
			fmt.Sprintf("addon %q is already installed", manifest.Name), nil)
	}

	provider := Provider{
		ID:              manifest.ID,
		Name:            manifest.Name,
		BaseURL:         baseURL,
		Resources:       manifest.Resources,
		Types:           manifest.Types,
		Catalogs:        manifest.Catalogs,
		EnabledCatalogs: make(map[string]bool, len(manifest.Catalogs)),
	}
	for _, c := range manifest.Catalogs {
		provider.EnabledCatalogs[CatalogKey(c.Type, c.ID)] = true
	}

	settings.Providers = append(settings.Providers, provider)
	if err := in.store.Save(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	in.logger.Infof("[Installer] installed addon %s (%s) with %d catalogs",
		provider.Name, provider.ID, len(provider.Catalogs))
	return &provider, nil
}

// Uninstall removes the addon with the given id.
func (in *Installer) Uninstall(id string) error {
	settings, err := in.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	kept := settings.Providers[:0]
	found := false
	for _, p := range settings.Providers {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return apperrors.NewConfigValidation(fmt.Sprintf("addon %q is not installed", id), nil)
	}

	settings.Providers = kept
	if err := in.store.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	in.logger.Infof("[Installer] uninstalled addon %s", id)
	return nil
}

// ToggleCatalog enables or disables one declared catalog of an installed addon.
func (in *Installer) ToggleCatalog(providerID, contentType, catalogID string, enabled bool) error {
	settings, err := in.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	p := settings.Provider(providerID)
	if p == nil {
		return apperrors.NewConfigValidation(fmt.Sprintf("addon %q is not installed", providerID), nil)
	}

	declared := false
	for _, c := range p.Catalogs {
		if c.Type == contentType && c.ID == catalogID {
			declared = true
			break
		}
	}
	if !declared {
		return apperrors.NewConfigValidation(
			fmt.Sprintf("addon %q does not declare catalog %s/%s", providerID, contentType, catalogID), nil)
	}

	p.EnabledCatalogs[CatalogKey(contentType, catalogID)] = enabled
	return in.store.Save(settings)
}

// SetMetadataProvider updates the metadata-provider key and enabled flag.
func (in *Installer) SetMetadataProvider(apiKey string, enabled bool) error {
	settings, err := in.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	settings.MetadataProvider = MetadataProviderConfig{APIKey: apiKey, Enabled: enabled}
	return in.store.Save(settings)
}
