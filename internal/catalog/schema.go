// Package catalog loads the static users the simulator replays: the JSON
// catalog file format, its validation and conversion into domain users, and
// the read-only provider the rest of the program depends on.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/invopop/jsonschema"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// File is the top-level structure of a catalog file.
type File struct {
	Domains map[string]DomainUsers `json:"domains" jsonschema:"required"`
}

// DomainUsers groups the users of one catalog domain.
type DomainUsers struct {
	Users []RawUser `json:"users" jsonschema:"required"`
}

// RawUser is one user as stored in the catalog file.
type RawUser struct {
	ID           string                             `json:"id" jsonschema:"required"`
	Name         string                             `json:"name" jsonschema:"required"`
	Avatar       string                             `json:"avatar,omitempty"`
	Domain       string                             `json:"domain,omitempty" jsonschema:"enum=Books,enum=Movie"`
	RawProfile   string                             `json:"rawProfile,omitempty"`
	Profile      RawProfile                         `json:"profile"`
	History      []RawHistoryItem                   `json:"history"`
	ExposureList []RawExposureItem                  `json:"exposureList"`
	ModelOutputs map[string]domain.SimulationResult `json:"modelOutputs,omitempty"`
	GroundTruth  string                             `json:"groundTruth,omitempty"`
}

// RawProfile holds the demographic fields of a user.
type RawProfile struct {
	Gender     string     `json:"gender,omitempty"`
	Age        FlexString `json:"age,omitempty"`
	Occupation string     `json:"occupation,omitempty"`
	Location   string     `json:"location,omitempty"`
	Traits     []string   `json:"traits,omitempty"`
}

// RawHistoryItem is one past interaction.
type RawHistoryItem struct {
	Title        string `json:"title" jsonschema:"required"`
	Year         string `json:"year,omitempty"`
	Genre        string `json:"genre,omitempty"`
	Rating       string `json:"rating,omitempty"`
	Cover        string `json:"cover,omitempty"`
	Description  string `json:"description,omitempty"`
	Author       string `json:"author,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Pages        string `json:"pages,omitempty"`
	GlobalRating string `json:"globalRating,omitempty"`
	MyBehavior   string `json:"myBehavior,omitempty"`
}

// RawExposureItem is one candidate. Label is informational; positions
// always determine labels.
type RawExposureItem struct {
	Label       string `json:"label,omitempty"`
	Title       string `json:"title" jsonschema:"required"`
	Year        string `json:"year,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Cover       string `json:"cover,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Pages       string `json:"pages,omitempty"`
	Rating      string `json:"rating,omitempty"`
}

// FlexString accepts a JSON string or number and keeps its text form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*s = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*s = FlexString(n.String())
	return nil
}

// JSONSchema describes FlexString as string-or-number.
func (FlexString) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{{Type: "string"}, {Type: "number"}},
	}
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes catalog JSON.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	return &f, nil
}
