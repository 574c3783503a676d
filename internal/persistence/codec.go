package persistence

import (
	"encoding/json"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

const (
	jsonIndentPrefixConstant = ""
	jsonIndentConstant       = "  "
	mapstructureTagConstant  = "mapstructure"
)

// Codec translates AppConfiguration to and from its JSON document.
type Codec struct{}

// Encode renders the configuration as indented JSON.
func (Codec) Encode(configuration AppConfiguration) ([]byte, error) {
	if configuration.Repositories == nil {
		configuration.Repositories = []string{}
	}
	encoded, encodeError := json.MarshalIndent(configuration, jsonIndentPrefixConstant, jsonIndentConstant)
	if encodeError != nil {
		return nil, PersistenceError{Operation: operationEncodeConstant, Cause: encodeError}
	}
	return encoded, nil
}

// Decode parses either the object layout or the legacy array of paths.
// Keys missing from the object layout keep their default values.
func (Codec) Decode(document []byte) (AppConfiguration, error) {
	var generic any
	if unmarshalError := json.Unmarshal(document, &generic); unmarshalError != nil {
		return AppConfiguration{}, PersistenceError{Operation: operationDecodeConstant, Cause: unmarshalError}
	}

	switch typedDocument := generic.(type) {
	case []any:
		return decodeLegacyDocument(typedDocument)
	case map[string]any:
		return decodeObjectDocument(typedDocument)
	default:
		return AppConfiguration{}, PersistenceError{Operation: operationDecodeConstant, Cause: ErrUnsupportedDocument}
	}
}

func decodeLegacyDocument(entries []any) (AppConfiguration, error) {
	configuration := DefaultAppConfiguration()
	if decodeError := mapstructure.Decode(entries, &configuration.Repositories); decodeError != nil {
		return AppConfiguration{}, PersistenceError{Operation: operationDecodeConstant, Cause: decodeError}
	}
	return configuration, nil
}

func decodeObjectDocument(fields map[string]any) (AppConfiguration, error) {
	configuration := DefaultAppConfiguration()
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: mapstructureTagConstant,
		Result:  &configuration,
	})
	if decoderError != nil {
		return AppConfiguration{}, PersistenceError{Operation: operationDecodeConstant, Cause: decoderError}
	}
	if decodeError := decoder.Decode(fields); decodeError != nil {
		return AppConfiguration{}, PersistenceError{Operation: operationDecodeConstant, Cause: decodeError}
	}
	if configuration.Repositories == nil {
		configuration.Repositories = []string{}
	}
	return configuration, nil
}
