package projectconfig

import (
	"encoding/json"
	"errors"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// datafileSchema guards the structural shape of incoming datafiles before
// they reach the decoder, so malformed documents fail with one clear error
// instead of surfacing as scattered zero values at decision time.
const datafileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "revision", "experiments"],
  "properties": {
    "accountId": {"type": "string"},
    "projectId": {"type": "string"},
    "revision": {"type": "string"},
    "version": {"type": "string"},
    "anonymizeIP": {"type": "boolean"},
    "botFiltering": {"type": "boolean"},
    "experiments": {"type": "array", "items": {"$ref": "#/$defs/experiment"}},
    "groups": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "policy", "experiments", "trafficAllocation"],
        "properties": {
          "id": {"type": "string"},
          "policy": {"type": "string"},
          "experiments": {"type": "array", "items": {"$ref": "#/$defs/experiment"}},
          "trafficAllocation": {"$ref": "#/$defs/trafficAllocation"}
        }
      }
    },
    "audiences": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "conditions"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "conditions": {"type": "string"}
        }
      }
    },
    "featureFlags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "key"],
        "properties": {
          "id": {"type": "string"},
          "key": {"type": "string"},
          "rolloutId": {"type": "string"},
          "experimentIds": {"type": "array", "items": {"type": "string"}},
          "variables": {"type": "array"}
        }
      }
    },
    "rollouts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "experiments"],
        "properties": {
          "id": {"type": "string"},
          "experiments": {"type": "array", "items": {"$ref": "#/$defs/experiment"}}
        }
      }
    },
    "attributes": {"type": "array"},
    "events": {"type": "array"}
  },
  "$defs": {
    "trafficAllocation": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["entityId", "endOfRange"],
        "properties": {
          "entityId": {"type": "string"},
          "endOfRange": {"type": "integer", "minimum": 0, "maximum": 10000}
        }
      }
    },
    "experiment": {
      "type": "object",
      "required": ["id", "key", "status", "variations", "trafficAllocation"],
      "properties": {
        "id": {"type": "string"},
        "key": {"type": "string"},
        "status": {"type": "string"},
        "layerId": {"type": "string"},
        "audienceIds": {"type": "array", "items": {"type": "string"}},
        "forcedVariations": {"type": "object", "additionalProperties": {"type": "string"}},
        "trafficAllocation": {"$ref": "#/$defs/trafficAllocation"},
        "variations": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "key"],
            "properties": {
              "id": {"type": "string"},
              "key": {"type": "string"},
              "variables": {"type": "array"}
            }
          }
        }
      }
    }
  }
}`

var compiledDatafileSchema = jsonschema.MustCompileString("datafile.schema.json", datafileSchema)

func validateDatafile(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Join(ErrInvalidDatafile, err)
	}
	if err := compiledDatafileSchema.Validate(doc); err != nil {
		return errors.Join(ErrInvalidDatafile, err)
	}
	return nil
}
