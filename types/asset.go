package types

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

const (
	assetHttpsPrefix = "https://assets.neos.com/assets/"
	assetDbPrefix    = "neosdb:///"
)

// AssetUrl points to a Neos asset such as a profile picture. The API
// uses both neosdb:/// and https:// forms.
type AssetUrl struct {
	raw string
}

func ParseAssetUrl(raw string) (AssetUrl, error) {
	switch {
	case strings.HasPrefix(raw, assetDbPrefix) && len(raw) > len(assetDbPrefix):
		return AssetUrl{raw: raw}, nil
	case strings.HasPrefix(raw, "https://"):
		return AssetUrl{raw: raw}, nil
	}
	return AssetUrl{}, fmt.Errorf("asset url %q should start with `neosdb:///` or `https://`", raw)
}

func (a AssetUrl) IsNeosDb() bool {
	return strings.HasPrefix(a.raw, assetDbPrefix)
}

// Filename is the last path element, extension included.
func (a AssetUrl) Filename() string {
	return path.Base(strings.TrimPrefix(a.raw, assetDbPrefix))
}

// Id is the filename without its extension.
func (a AssetUrl) Id() string {
	name := a.Filename()
	return strings.TrimSuffix(name, path.Ext(name))
}

// Ext is the file extension without the dot, or "".
func (a AssetUrl) Ext() string {
	return strings.TrimPrefix(path.Ext(a.Filename()), ".")
}

// HttpsUrl is the URL the asset can be downloaded from. neosdb assets
// are served without their extension.
func (a AssetUrl) HttpsUrl() string {
	if a.IsNeosDb() {
		return assetHttpsPrefix + a.Id()
	}
	return a.raw
}

func (a AssetUrl) String() string {
	return a.raw
}

func (a *AssetUrl) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAssetUrl(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a AssetUrl) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.raw)
}
