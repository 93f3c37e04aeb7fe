// assets/embed.go
//
// Static files served by the Wordleboard service.
//   - wordleboard.js: browser adapter that hooks the Wordle <game-app> and
//     reports board state to /host/*.
//   - credentials.json.example: template for the credentials file.

package assets

import (
	"embed"
)

//go:embed wordleboard.js credentials.json.example
var FS embed.FS

func mustRead(name string) []byte {
	b, err := FS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}

// AdapterScript returns the browser adapter source.
func AdapterScript() []byte { return mustRead("wordleboard.js") }

// CredentialsExample returns the credentials file template.
func CredentialsExample() []byte { return mustRead("credentials.json.example") }
