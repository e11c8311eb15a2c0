package envelope

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

const envelopeTestPrefix = "envelope:envelope_test"

func TestEncode_Variants(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "text",
			result: Text("Pong!"),
			want:   `{"type":4,"data":{"content":"Pong!"}}`,
		},
		{
			name:   "empty text keeps content",
			result: Text(""),
			want:   `{"type":4,"data":{"content":""}}`,
		},
		{
			name:   "empty ephemeral keeps content",
			result: Ephemeral(""),
			want:   `{"type":4,"data":{"content":"","flags":64}}`,
		},
		{
			name:   "pong passthrough",
			result: Pong(),
			want:   `{"type":1}`,
		},
		{
			name:   "prebuilt envelope passthrough",
			result: &ResponseEnvelope{Type: TypeUpdateMessage, Data: &ResponseData{Content: "updated"}},
			want:   `{"type":7,"data":{"content":"updated"}}`,
		},
		{
			name:   "ephemeral",
			result: Ephemeral("only you"),
			want:   `{"type":4,"data":{"content":"only you","flags":64}}`,
		},
		{
			name:   "deferred",
			result: Deferred{},
			want:   `{"type":5}`,
		},
		{
			name:   "deferred ephemeral",
			result: Deferred{Ephemeral: true},
			want:   `{"type":5,"data":{"flags":64}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.result)
			if err != nil {
				t.Fatalf("%s - Encode: %v", envelopeTestPrefix, err)
			}
			if string(got) != tt.want {
				t.Errorf("%s - Encode() = %s, want %s", envelopeTestPrefix, got, tt.want)
			}
		})
	}
}

func TestEncode_PrebuiltEnvelopeUnchanged(t *testing.T) {
	env := Message("hello")
	if env.Envelope() != env {
		t.Errorf("%s - expected envelope to be passed through by identity", envelopeTestPrefix)
	}
}

func TestEncode_NilResult(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, ErrNilResult) {
		t.Errorf("%s - nil result: got %v, want ErrNilResult", envelopeTestPrefix, err)
	}
	var env *ResponseEnvelope
	if _, err := Encode(env); !errors.Is(err, ErrNilResult) {
		t.Errorf("%s - nil envelope: got %v, want ErrNilResult", envelopeTestPrefix, err)
	}
}

func TestDecode_Ping(t *testing.T) {
	i, err := Decode([]byte(`{"type":1}`))
	if err != nil {
		t.Fatalf("%s - Decode: %v", envelopeTestPrefix, err)
	}
	if i.Type != discordgo.InteractionPing {
		t.Errorf("%s - Type = %v, want ping", envelopeTestPrefix, i.Type)
	}
}

func TestDecode_ApplicationCommandWithSubcommands(t *testing.T) {
	body := `{"type":2,"data":{"name":"admin","options":[
		{"type":2,"name":"roles","options":[
			{"type":1,"name":"add","options":[{"type":3,"name":"role","value":"mod"}]}
		]}
	]}}`

	i, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("%s - Decode: %v", envelopeTestPrefix, err)
	}
	data, ok := CommandData(i)
	if !ok {
		t.Fatalf("%s - expected command data", envelopeTestPrefix)
	}
	if data.Name != "admin" {
		t.Errorf("%s - Name = %q, want admin", envelopeTestPrefix, data.Name)
	}
	if len(data.Options) != 1 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommandGroup {
		t.Fatalf("%s - expected one subcommand group option, got %+v", envelopeTestPrefix, data.Options)
	}
	sub := data.Options[0].Options
	if len(sub) != 1 || sub[0].Name != "add" || sub[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		t.Fatalf("%s - expected nested subcommand add, got %+v", envelopeTestPrefix, sub)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"not json", `not json`},
		{"empty object", `{}`},
		{"null", `null`},
		{"zero type", `{"type":0}`},
		{"data without type", `{"data":{"name":"ping"}}`},
		{"wrong type field", `{"type":"ping"}`},
		{"command without data", `{"type":2}`},
		{"command without name", `{"type":2,"data":{"name":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			if err == nil {
				t.Fatalf("%s - expected error for %q", envelopeTestPrefix, tt.body)
			}
			if !errors.Is(err, ErrMalformedInteraction) {
				t.Errorf("%s - error = %v, want ErrMalformedInteraction", envelopeTestPrefix, err)
			}
		})
	}
}

func TestCommandData_NotACommand(t *testing.T) {
	i, err := Decode([]byte(`{"type":1}`))
	if err != nil {
		t.Fatalf("%s - Decode: %v", envelopeTestPrefix, err)
	}
	if _, ok := CommandData(i); ok {
		t.Errorf("%s - ping should carry no command data", envelopeTestPrefix)
	}
	if _, ok := CommandData(nil); ok {
		t.Errorf("%s - nil interaction should carry no command data", envelopeTestPrefix)
	}
}
