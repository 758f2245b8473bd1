package conversation

import (
	"encoding/xml"
	"fmt"
)

// Amazon Polly voices supported by Twilio <Say>. Aditi covers Indian
// English and reads Telugu transliteration reasonably.
var pollyVoices = map[string]string{
	"hi": "Polly.Kajal",
	"te": "Polly.Aditi",
	"en": "Polly.Aditi",
}

func pollyVoice(language string) string {
	if v, ok := pollyVoices[language]; ok {
		return v
	}
	return "Polly.Aditi"
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	SpeechModel   string   `xml:"speechModel,attr"`
	Enhanced      bool     `xml:"enhanced,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

func (r *twimlResponse) render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("conversation: twiml render failed: %w", err)
	}
	return xml.Header + string(body), nil
}

// voiceReply speaks the reply and either keeps gathering speech or
// hangs up when the dialogue is over.
func voiceReply(text, language, gatherAction string, done bool) (string, error) {
	resp := &twimlResponse{
		Verbs: []any{twimlSay{
			Voice:    pollyVoice(language),
			Language: "en-IN",
			Text:     text,
		}},
	}
	if done {
		resp.Verbs = append(resp.Verbs, twimlHangup{})
	} else {
		resp.Verbs = append(resp.Verbs, twimlGather{
			Input:         "speech",
			SpeechTimeout: "auto",
			SpeechModel:   "phone_call",
			Enhanced:      true,
			Action:        gatherAction,
			Method:        "POST",
		})
	}
	return resp.render()
}

// voiceError is the fallback TwiML when processing fails.
func voiceError() string {
	resp := &twimlResponse{
		Verbs: []any{
			twimlSay{Text: "I am sorry, an internal error occurred. Goodbye."},
			twimlHangup{},
		},
	}
	out, _ := resp.render()
	return out
}

// voiceUnknown tells an unrecognized caller their account was not found.
func voiceUnknown() string {
	resp := &twimlResponse{
		Verbs: []any{
			twimlSay{Text: "Sorry, I could not find your account."},
			twimlHangup{},
		},
	}
	out, _ := resp.render()
	return out
}
