package core

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	AttributeKeyValidator = attribute.Key("validator")
	AttributeKeyAddr      = attribute.Key("addr")
	AttributeKeyPort      = attribute.Key("port")
)

func (c ValidatorConfig) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		AttributeKeyValidator.String(c.Label),
		AttributeKeyAddr.String(c.Addr),
		AttributeKeyPort.Int(int(c.Port)),
	}
}
