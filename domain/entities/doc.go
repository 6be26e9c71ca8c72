// Package entities provides core domain entities for the SDK.
// These are the value types shared by every package that talks to the
// system API: 128-bit cycle amounts, principals, reject codes and the
// small closed enumerations the host understands.
package entities
