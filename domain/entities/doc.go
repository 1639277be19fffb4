// Package entities provides core domain entities for the host SDK.
// These are plain types shared by every layer: chain handles, session states,
// chain specification shapes, and structured error details. Anything the
// external engine interprets stays opaque here.
package entities
