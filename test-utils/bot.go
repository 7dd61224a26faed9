package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	ticketbot "github.com/weaselp/ticketbot"
)

var baseConfig = `
[core]
nick = "ticketbot"
user = "ticketbot_user"
name = "Ticket Bot"
pass = "password"

prefix = "!"
`

var expectedBaseOutput = []string{
	"PASS :password",
	"NICK :ticketbot",
	"USER ticketbot_user 0 * :Ticket Bot",
}

// RunTest feeds the given server lines to a fresh bot and checks that it
// wrote the handshake plus the expected output.
func RunTest(t *testing.T, testConfig string, input, output []string) bool {
	cs, b := NewTestBot(t, testConfig)

	// Send these lines
	cs.SendServerLines(input)

	// Run the bot until EOF
	_ = b.Run(cs)

	// Expect the base output
	var expectedOutput []string
	expectedOutput = append(expectedOutput, expectedBaseOutput...)
	expectedOutput = append(expectedOutput, output...)

	return cs.CheckLines(t, expectedOutput)
}

// NewTestBot will return the TestClientServer and ticketbot.Bot for use
// in the test.
func NewTestBot(t *testing.T, testConfig string) (*TestClientServer, *ticketbot.Bot) {
	confReader := bytes.NewBufferString(baseConfig)
	confReader.WriteString(testConfig)

	bot, err := ticketbot.NewBot(confReader)
	assert.NoError(t, err)

	return NewTestClientServer(), bot
}
