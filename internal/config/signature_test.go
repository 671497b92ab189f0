package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func settingsWith(providers ...Provider) *Settings {
	return &Settings{Providers: providers}
}

func TestSignatureOrderIndependent(t *testing.T) {
	a := Provider{ID: "cinemeta", EnabledCatalogs: map[string]bool{
		"movie/top":  true,
		"series/top": true,
	}}
	b := Provider{ID: "torrentio", EnabledCatalogs: map[string]bool{
		"movie/popular": true,
	}}

	sig1 := Signature(settingsWith(a, b))
	sig2 := Signature(settingsWith(b, a))
	assert.Equal(t, sig1, sig2)
}

func TestSignatureSensitiveToCatalogToggle(t *testing.T) {
	before := settingsWith(Provider{ID: "cinemeta", EnabledCatalogs: map[string]bool{
		"movie/top": true,
	}})
	after := settingsWith(Provider{ID: "cinemeta", EnabledCatalogs: map[string]bool{
		"movie/top": false,
	}})

	assert.NotEqual(t, Signature(before), Signature(after))
}

func TestSignatureSensitiveToProviderSet(t *testing.T) {
	one := settingsWith(Provider{ID: "cinemeta"})
	two := settingsWith(Provider{ID: "cinemeta"}, Provider{ID: "torrentio"})

	assert.NotEqual(t, Signature(one), Signature(two))
}

func TestSignatureEncodesKeyPresenceNotValue(t *testing.T) {
	keyA := &Settings{MetadataProvider: MetadataProviderConfig{APIKey: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true}}
	keyB := &Settings{MetadataProvider: MetadataProviderConfig{APIKey: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Enabled: true}}
	noKey := &Settings{MetadataProvider: MetadataProviderConfig{Enabled: true}}

	assert.Equal(t, Signature(keyA), Signature(keyB))
	assert.NotEqual(t, Signature(keyA), Signature(noKey))
	assert.False(t, strings.Contains(Signature(keyA), "aaaa"))
}

func TestSignatureSensitiveToMetadataToggle(t *testing.T) {
	on := &Settings{MetadataProvider: MetadataProviderConfig{APIKey: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: true}}
	off := &Settings{MetadataProvider: MetadataProviderConfig{APIKey: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Enabled: false}}

	assert.NotEqual(t, Signature(on), Signature(off))
}
