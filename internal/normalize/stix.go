package normalize

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// STIX descriptions arrive with embedded markup; strip it before storage so
// downstream text queries see plain prose. raw_data keeps the original.
var descPolicy = bluemonday.StrictPolicy()

// StixDoc is the stored shape for one STIX object from the MITRE ATT&CK
// enterprise bundle. Type-specific fields are populated only for the
// matching stix_type and omitted otherwise.
type StixDoc struct {
	StixID      string `bson:"stix_id"`
	StixType    string `bson:"stix_type"`
	Name        string `bson:"name,omitempty"`
	Description string `bson:"description,omitempty"`
	Created     string `bson:"created,omitempty"`
	Modified    string `bson:"modified,omitempty"`
	Source      string `bson:"source"`
	APIVersion  string `bson:"api_version"`

	// attack-pattern
	KillChainPhases    []any  `bson:"kill_chain_phases,omitempty"`
	ExternalReferences []any  `bson:"external_references,omitempty"`
	MitreAttackID      string `bson:"mitre_attack_id,omitempty"`
	MitreURL           string `bson:"mitre_url,omitempty"`

	// malware
	IsFamily     *bool `bson:"is_family,omitempty"`
	MalwareTypes []any `bson:"malware_types,omitempty"`

	// tool
	ToolTypes []any `bson:"tool_types,omitempty"`

	// intrusion-set / campaign
	Aliases   []any  `bson:"aliases,omitempty"`
	FirstSeen string `bson:"first_seen,omitempty"`
	LastSeen  string `bson:"last_seen,omitempty"`

	IngestionTimestamp time.Time `bson:"ingestion_timestamp"`
	RawData            Payload   `bson:"raw_data"`
}

// StixNormalizer maps STIX 2.1 objects from the enterprise-attack bundle.
type StixNormalizer struct{}

func (StixNormalizer) Normalize(p Payload, ingestedAt time.Time) (any, error) {
	return StixDocument(p, ingestedAt)
}

// StixDocument builds a StixDoc from one STIX object. Objects without an id
// or a type tag fail validation.
func StixDocument(p Payload, ingestedAt time.Time) (StixDoc, error) {
	id, ok := p.String("id")
	if !ok || id == "" {
		return StixDoc{}, missingField("stix id")
	}
	typ, ok := p.String("type")
	if !ok || typ == "" {
		return StixDoc{}, missingField("stix type")
	}

	doc := StixDoc{
		StixID:             id,
		StixType:           typ,
		Source:             "MITRE ATT&CK GitHub",
		APIVersion:         "2.1",
		IngestionTimestamp: ingestedAt,
		RawData:            p,
	}
	doc.Name, _ = p.String("name")
	doc.Created, _ = p.String("created")
	doc.Modified, _ = p.String("modified")
	if desc, ok := p.String("description"); ok {
		doc.Description = strings.TrimSpace(descPolicy.Sanitize(desc))
	}

	switch typ {
	case "attack-pattern":
		doc.KillChainPhases, _ = p.Slice("kill_chain_phases")
		doc.ExternalReferences, _ = p.Slice("external_references")
		if refs, ok := p.Maps("external_references"); ok {
			for _, ref := range refs {
				if src, _ := ref.String("source_name"); src == "mitre-attack" {
					doc.MitreAttackID, _ = ref.String("external_id")
					doc.MitreURL, _ = ref.String("url")
					break
				}
			}
		}
	case "malware":
		if fam, ok := p.Bool("is_family"); ok {
			doc.IsFamily = &fam
		}
		doc.MalwareTypes, _ = p.Slice("malware_types")
	case "tool":
		doc.ToolTypes, _ = p.Slice("tool_types")
	case "intrusion-set":
		doc.Aliases, _ = p.Slice("aliases")
	case "campaign":
		doc.Aliases, _ = p.Slice("aliases")
		doc.FirstSeen, _ = p.String("first_seen")
		doc.LastSeen, _ = p.String("last_seen")
	}

	return doc, nil
}
