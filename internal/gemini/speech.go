package gemini

import (
	"context"
	"encoding/base64"
	"slices"
	"strings"

	"creatorhub/pkg/wav"
)

// DefaultVoice is the prebuilt voice used when none is given.
const DefaultVoice = "Kore"

// Voices are the prebuilt speech voices.
var Voices = []string{
	"Zephyr", "Puck", "Charon", "Kore", "Fenrir", "Leda", "Orus", "Aoede",
	"Callirrhoe", "Autonoe", "Enceladus", "Iapetus", "Umbriel", "Algieba",
	"Despina", "Erinome", "Algenib", "Rasalgethi", "Laomedeia", "Achernar",
	"Alnilam", "Schedar", "Gacrux", "Pulcherrima", "Achird", "Zubenelgenubi",
	"Vindemiatrix", "Sadachbia", "Sadaltager", "Sulafat",
}

// Speech is synthesized audio framed as WAV.
type Speech struct {
	WAV        []byte
	SampleRate int
	Samples    int
	Voice      string
}

// Synthesize converts text to speech with a prebuilt voice.
func (c *Client) Synthesize(ctx context.Context, text, voice string) (Speech, error) {
	if strings.TrimSpace(text) == "" {
		return Speech{}, &Error{Kind: KindTerminalClient, Op: opSpeech, Message: "text is empty"}
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if !slices.Contains(Voices, voice) {
		return Speech{}, &Error{Kind: KindTerminalClient, Op: opSpeech, Message: "unknown voice " + voice}
	}

	req := GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: text}}}},
		GenerationConfig: GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				VoiceConfig: VoiceConfig{PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: voice}},
			},
		},
		Model: c.cfg.SpeechModel,
	}
	var resp GenerateContentResponse
	if err := c.call(ctx, opSpeech, c.cfg.SpeechModel+":generateContent", req, &resp); err != nil {
		return Speech{}, err
	}

	inline, err := audioPart(&resp)
	if err != nil {
		return Speech{}, err
	}
	pcm, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return Speech{}, &Error{Kind: KindMalformedResponse, Op: opSpeech, Message: "audio data is not valid base64", Err: err}
	}

	samples := wav.SamplesFromPCM(pcm)
	rate := wav.SampleRateFromMIME(inline.MimeType)
	return Speech{
		WAV:        wav.Encode(samples, rate),
		SampleRate: rate,
		Samples:    len(samples),
		Voice:      voice,
	}, nil
}

func audioPart(resp *GenerateContentResponse) (*InlineData, error) {
	cand, err := firstCandidate(opSpeech, resp)
	if err != nil {
		return nil, err
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		if blockedFinishReasons[cand.FinishReason] {
			return nil, &Error{Kind: KindContentBlocked, Op: opSpeech, Message: "speech generation stopped by moderation: " + cand.FinishReason}
		}
		return nil, &Error{Kind: KindMalformedResponse, Op: opSpeech, Message: "candidate carries no parts"}
	}
	inline := cand.Content.Parts[0].InlineData
	if inline == nil || inline.Data == "" || !strings.HasPrefix(inline.MimeType, "audio/") {
		return nil, &Error{Kind: KindMalformedResponse, Op: opSpeech, Message: "invalid audio data from TTS API"}
	}
	return inline, nil
}
