package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/contest"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 20 * 1024 * 1024

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

const profileSchemaJSON = `{
  "type": "object",
  "properties": {
    "major": {"type": ["string", "null"]},
    "goal": {"type": ["string", "null"]},
    "hoursPerWeek": {"type": ["integer", "null"]},
    "preferredTeamSize": {"type": ["string", "null"]},
    "skills": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["name", "level"],
        "properties": {
          "name": {"type": "string"},
          "level": {"type": "integer"}
        }
      }
    }
  }
}`

var profileSchema = mustSchema(profileSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// ParseProfile decodes the user_profile form field. Falsy JSON values
// (null, {}, "", 0, false) are treated as an empty profile.
func ParseProfile(raw string) (contest.UserProfile, error) {
	var profile contest.UserProfile

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return profile, withCause(fiber.StatusBadRequest, "Invalid user profile JSON format", err)
	}
	if isFalsy(doc) {
		return profile, nil
	}

	result, err := profileSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return profile, withCause(fiber.StatusBadRequest, "Invalid user profile format", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return profile, badRequest("Invalid user profile format: " + strings.Join(errs, "; "))
	}

	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return profile, withCause(fiber.StatusBadRequest, "Invalid user profile format", err)
	}
	return profile, nil
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// ParseOptions never fails: unparsable options mean defaults.
func ParseOptions(raw string) contest.AnalysisOptions {
	var opts contest.AnalysisOptions
	if strings.TrimSpace(raw) == "" {
		return opts
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return opts
	}
	if err := mapstructure.WeakDecode(doc, &opts); err != nil {
		return contest.AnalysisOptions{}
	}
	return opts
}

// readImage validates and loads an uploaded poster.
func readImage(fh *multipart.FileHeader) (*ai.Image, error) {
	mimeType := fh.Header.Get(fiber.HeaderContentType)
	if err := CheckImage(mimeType, fh.Size); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, withCause(fiber.StatusBadRequest, "Failed to process image", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, withCause(fiber.StatusBadRequest, "Failed to process image", err)
	}
	if err := CheckImage(mimeType, int64(len(data))); err != nil {
		return nil, err
	}

	return &ai.Image{MIMEType: mimeType, Data: data}, nil
}

// CheckImage applies the upload rules: an allow-listed content type and at
// most MaxImageSize bytes.
func CheckImage(mimeType string, size int64) error {
	if !slices.Contains(allowedImageTypes, mimeType) {
		return badRequest("Invalid image type. Allowed: " + strings.Join(allowedImageTypes, ", "))
	}
	if size > MaxImageSize {
		return badRequest(fmt.Sprintf("Image too large. Maximum size: %dMB", MaxImageSize/(1024*1024)))
	}
	return nil
}
