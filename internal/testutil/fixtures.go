// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureDomains contiene dominios de búsqueda válidos.
var FixtureDomains = []string{
	"example.com",
	"test.example.com",
	"example.co.uk",
	"another.test.example.com",
}

// FixtureInvalidDomains contiene objetivos inválidos.
var FixtureInvalidDomains = []string{
	"",
	"not a domain",
	"192.168.1.1",
	"2001:db8::1",
	"-invalid.com",
	"invalid-.com",
	".example.com",
	"example..com",
	"localhost",
	"co.uk",
}

// Stream fixtures: líneas tal como las emite el endpoint /api/stream.
const (
	FixtureCTLine         = `data: {"subdomain":"a.example.com","source":"Certificate Transparency"}`
	FixtureDNSLine        = `data: {"subdomain":"b.example.com","source":"DNS Enumeration"}`
	FixtureDuplicateLine  = `data: {"subdomain":"a.example.com","source":"DNS Enum"}`
	FixtureCompleteEvent  = `event: complete`
	FixtureSentinelLine   = `data: {"message": "Search completed"}`
	FixtureMalformedLine  = `data: {"subdomain":`
	FixtureMissingSource  = `data: {"subdomain":"c.example.com"}`
	FixtureCompletionTail = "event: complete\ndata: {\"message\": \"Search completed\"}\n\n"
)
