package llm

import "github.com/invopop/jsonschema"

// GenerateSchema reflects an inline JSON schema for T suitable for strict
// structured output.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
