package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fishivo/geocore/internal/core/domain"
)

// Subjects and streams.
const (
	subjectNavigationPrefix = "geocore.navigation."
	subjectFixPrefix        = "geocore.fixes."

	streamNavigation = "GEOCORE_NAVIGATION"
	streamFixes      = "GEOCORE_FIXES"

	// ContentTypeReading marks protobuf-encoded navigation readings.
	ContentTypeReading = "application/x-protobuf; messageType=google.protobuf.Struct"
	// ContentTypeFix marks JSON-encoded fixes.
	ContentTypeFix = "application/json"
)

// FixMessage is the wire form of a fix published for a vessel.
type FixMessage struct {
	VesselID       string             `json:"vessel_id"`
	Position       domain.GPSPosition `json:"position"`
	CompassHeading *float64           `json:"compass_heading,omitempty"`
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// subjectToken makes a vessel id safe to use as one subject token.
func subjectToken(id string) string {
	if id == "" {
		return "_"
	}
	return subjectReplacer.Replace(id)
}

// NavigationSubject is the subject readings for vesselID are published on.
// An empty vesselID yields the wildcard for all vessels.
func NavigationSubject(vesselID string) string {
	if vesselID == "" {
		return subjectNavigationPrefix + ">"
	}
	return subjectNavigationPrefix + subjectToken(vesselID)
}

// FixSubject is the subject raw fixes for vesselID are published on.
func FixSubject(vesselID string) string {
	if vesselID == "" {
		return subjectFixPrefix + ">"
	}
	return subjectFixPrefix + subjectToken(vesselID)
}

// EncodeReading serialises a reading as a protobuf Struct.
func EncodeReading(r *domain.NavigationReading) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("reading to struct: %w", err)
	}
	return proto.Marshal(st)
}

// DecodeReading is the inverse of EncodeReading.
func DecodeReading(data []byte) (*domain.NavigationReading, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal struct: %w", err)
	}
	raw, err := json.Marshal(st.AsMap())
	if err != nil {
		return nil, err
	}
	var r domain.NavigationReading
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("struct to reading: %w", err)
	}
	return &r, nil
}

// ReadingJSON re-encodes a protobuf reading as JSON for browser clients.
func ReadingJSON(data []byte) ([]byte, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal struct: %w", err)
	}
	return json.Marshal(st.AsMap())
}
