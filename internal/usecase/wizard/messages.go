package wizard

import (
	"fmt"
	"strings"

	"post-wizard-bot/internal/domain"
)

const (
	msgDetailsFallback = "I couldn't generate post details automatically, but we can continue."
	msgProvideDetails  = "Please provide the details for your post (what you're promoting, key message, any offers or dates)."
	msgTonePrompt      = "Finally, describe your company's tone for this post (e.g. professional, casual, playful)."
	msgSubmitted       = "Your post request has been submitted successfully! We'll let you know when it's ready."
	msgEmptyDetails    = "Post details can't be empty. Please describe what the post should say."
	msgEmptyTone       = "Please describe the tone you'd like for this post."
)

var (
	noticeUnknownCommand = domain.Notice{
		Title:       "Unknown Command",
		Description: "Type /help to see available commands",
		Variant:     domain.NoticeDestructive,
	}
	noticeSubmitFailed = domain.Notice{
		Title:       "Error",
		Description: "Failed to submit your request. Please try again.",
		Variant:     domain.NoticeDestructive,
	}
	noticeNoWizard = domain.Notice{
		Title:       "No post in progress",
		Description: "Type /create-post to start a new social media post",
		Variant:     domain.NoticeDefault,
	}
	noticeBusy = domain.Notice{
		Title:       "Please wait",
		Description: "Still processing your previous message",
		Variant:     domain.NoticeDefault,
	}
)

func msgInvalidPostType() string {
	names := make([]string, 0, len(domain.PostTypes))
	for _, pt := range domain.PostTypes {
		names = append(names, string(pt))
	}
	return "Please choose a valid post type: " + strings.Join(names, ", ")
}

func msgPlatformPrompt() string {
	return fmt.Sprintf("Which platforms should this post be published on? Send a comma-separated list (%s).", domain.PlatformNames())
}

func msgInvalidPlatforms(invalid []string) string {
	return fmt.Sprintf("Unknown platform(s): %s. Please choose from: %s.", strings.Join(invalid, ", "), domain.PlatformNames())
}

func msgTemplatePrompt() string {
	return "Choose a template by sending its number:\n" + domain.TemplateList()
}

func msgInvalidTemplate() string {
	return fmt.Sprintf("Please send a template number between 1 and %d.", len(domain.Templates))
}

func msgAlreadyInProgress(step domain.WizardStep) string {
	return fmt.Sprintf("A post is already in progress (step %d of %d). Finish it before starting a new one.", step, domain.StepTone)
}
