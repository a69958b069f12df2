package media

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when media host credentials are missing
var ErrNotConfigured = errors.New("media host credentials not configured")

// Signer issues signed parameters for direct client uploads
type Signer struct {
	cfg config.MediaConfig
	now func() time.Time
}

// NewSigner creates a new upload signer
func NewSigner(cfg config.MediaConfig) *Signer {
	if cfg.Folder == "" {
		cfg.Folder = "travelapp"
	}
	return &Signer{cfg: cfg, now: time.Now}
}

// Sign returns upload parameters for the given owner. The public id is
// scoped under the owner and made unique with a random suffix; an empty
// owner leaves the public id unset.
func (s *Signer) Sign(owner string) (*model.UploadSignature, error) {
	if s.cfg.APISecret == "" || s.cfg.APIKey == "" || s.cfg.CloudName == "" {
		return nil, ErrNotConfigured
	}

	var publicID *string
	if owner != "" {
		id := fmt.Sprintf("%s/user_%s/%s", s.cfg.Folder, owner, uuid.NewString())
		publicID = &id
	}

	ts := s.now().Unix()
	params := map[string]string{
		"folder":    s.cfg.Folder,
		"timestamp": strconv.FormatInt(ts, 10),
	}
	if publicID != nil {
		params["public_id"] = *publicID
	}

	return &model.UploadSignature{
		CloudName: s.cfg.CloudName,
		APIKey:    s.cfg.APIKey,
		Timestamp: ts,
		Signature: sign(params, s.cfg.APISecret),
		Folder:    s.cfg.Folder,
		PublicID:  publicID,
	}, nil
}

// sign hashes the key-sorted k=v pairs joined by '&' with the secret appended
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
