package telegram

import "analyze-skin/api/internal/skin"

const (
	StartText = "Send me a clear, well-lit photo of your face without makeup and I will tell you your skin type: Oily, Dry or Normal.\n" +
		"Commands: /help, /health"
	SendPhotoText      = "Please send a photo."
	UnknownCommandText = "Unknown command. Try /help."
	PhotoAcceptedText  = "Photo received, analyzing…"
	DownloadFailedText = "❌ Could not download the photo, please send it again."
)

var resultNotes = map[skin.SkinType]string{
	skin.Oily:      "Shine and visible pores suggest excess sebum.",
	skin.Dry:       "Flakiness or tightness suggests low moisture.",
	skin.Normal:    "Balanced skin with no strong oily or dry signs.",
	skin.Uncertain: "The photo is unclear. Try again with better light and no makeup.",
}

// ResultText renders the classification reply.
func ResultText(t skin.SkinType) string {
	return "🧴 Skin type: " + string(t) + "\n" + resultNotes[t]
}
