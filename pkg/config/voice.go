package config

import "strings"

// VoiceProfile maps a human readable label to a Google Neural2 voice.
// Samples: https://cloud.google.com/text-to-speech/docs/voices
type VoiceProfile struct {
	Label        string `json:"label"`
	VoiceID      string `json:"voice_id"`
	LanguageCode string `json:"language_code"`
}

type Voices []VoiceProfile

func NewVoiceProfile(label, voiceID string) VoiceProfile {
	return VoiceProfile{
		Label:        label,
		VoiceID:      voiceID,
		LanguageCode: LanguageCode(voiceID),
	}
}

// LanguageCode derives "en-US" from a voice id such as "en-US-Neural2-C".
func LanguageCode(voiceID string) string {
	parts := strings.Split(voiceID, "-")
	if len(parts) < 2 {
		return voiceID
	}
	return strings.Join(parts[:2], "-")
}

func DefaultVoices() Voices {
	return Voices{
		NewVoiceProfile("AU Female", "en-AU-Neural2-C"),
		NewVoiceProfile("AU Male", "en-AU-Neural2-B"),
		NewVoiceProfile("US Female", "en-US-Neural2-C"),
		NewVoiceProfile("US Male", "en-US-Neural2-D"),
		NewVoiceProfile("GB Female", "en-GB-Neural2-C"),
		NewVoiceProfile("GB Male", "en-GB-Neural2-D"),
	}
}

func (v Voices) Find(label string) (VoiceProfile, bool) {
	for _, p := range v {
		if p.Label == label {
			return p, true
		}
	}
	return VoiceProfile{}, false
}

// Resolve returns the profile for label, or the profile for fallback when label is
// empty or unknown.
func (v Voices) Resolve(label, fallback string) VoiceProfile {
	if p, ok := v.Find(label); ok {
		return p
	}
	p, _ := v.Find(fallback)
	return p
}

func (v Voices) Labels() []string {
	labels := make([]string, len(v))
	for i, p := range v {
		labels[i] = p.Label
	}
	return labels
}
