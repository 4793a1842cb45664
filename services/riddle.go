package services

import (
	"context"
	"fmt"

	"nearbot/models"
)

const riddlePersona = "You are Near creating short, cryptic riddles about " +
	"computer science or mathematics or artificial intelligence. " +
	"You speak quietly, analytically, and with emotional detachment."

const riddleRequest = "Create ONE short riddle about a computer science, machine learning, or " +
	"artificial intelligence concept.\n" +
	"Format it like this:\n" +
	"🧩 **Riddle:** <your riddle>\n\n" +
	"Then write:\n" +
	"||<short answer>||\n" +
	"No explanation unless asked.\n" +
	"Use a quiet, analytical Near-like tone with occasional subtle italics."

// GenerateRiddle asks the model for a single cryptic CS/ML riddle with the
// answer hidden in spoiler bars. Failures degrade to an apologetic one-liner.
func GenerateRiddle(ctx context.Context, llm LLMClient) string {
	completion, err := llm.Complete(ctx, []models.Turn{
		{Role: models.RoleSystem, Content: riddlePersona},
		{Role: models.RoleUser, Content: riddleRequest},
	})
	if err != nil {
		return fmt.Sprintf("Oops… I could not create a riddle this time. `%s`", ErrorKind(err))
	}
	return completion.Text
}
