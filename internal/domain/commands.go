package domain

import (
	"fmt"
	"strings"
)

// CommandSigil открывает любую команду.
const CommandSigil = "/"

// Command — закрытый набор команд чата.
type Command string

const (
	CommandCreatePost Command = "/create-post"
	CommandTemplates  Command = "/templates"
	CommandPlatforms  Command = "/platforms"
	CommandStatus     Command = "/status"
	CommandHelp       Command = "/help"
)

// Commands перечисляет команды в порядке показа в справке.
var Commands = []Command{CommandCreatePost, CommandTemplates, CommandPlatforms, CommandStatus, CommandHelp}

var commandDescriptions = map[Command]string{
	CommandCreatePost: "Start new social media post creation",
	CommandTemplates:  "List available Canva templates",
	CommandPlatforms:  "Show available social media platforms",
	CommandStatus:     "Check post status",
	CommandHelp:       "Show this help message",
}

// IsCommand сообщает, начинается ли ввод с сигила команды.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), CommandSigil)
}

// ParseCommand распознаёт команду по всему вводу целиком. Суффикс @botname, который добавляет Telegram, отбрасывается.
func ParseCommand(text string) (Command, bool) {
	token := strings.TrimSpace(text)
	if !strings.HasPrefix(token, CommandSigil) {
		return "", false
	}
	if at := strings.Index(token, "@"); at > 0 && !strings.ContainsAny(token[at:], " \t\n") {
		token = token[:at]
	}
	cmd := Command(token)
	if _, ok := commandDescriptions[cmd]; !ok {
		return "", false
	}
	return cmd, true
}

// Description возвращает строку справки.
func (c Command) Description() string {
	return commandDescriptions[c]
}

// Reply возвращает каноничный ответ бота на команду.
func (c Command) Reply() string {
	switch c {
	case CommandCreatePost:
		return "Let's create a new social media post. What type of post would you like to create? (product showcase, promotional offer, or company update)"
	case CommandTemplates:
		return "Here are the available Canva templates:\n" + TemplateList()
	case CommandPlatforms:
		return "Available platforms: " + PlatformNames()
	case CommandStatus:
		return "Checking your post status..."
	case CommandHelp:
		return "Available commands:\n" + CommandList()
	default:
		panic(fmt.Sprintf("domain: unhandled command %q", string(c)))
	}
}

// CommandList возвращает список команд с описаниями, по одной на строку.
func CommandList() string {
	lines := make([]string, 0, len(Commands))
	for _, c := range Commands {
		lines = append(lines, fmt.Sprintf("%s - %s", c, c.Description()))
	}
	return strings.Join(lines, "\n")
}

// TemplateList нумерует каталог шаблонов с единицы.
func TemplateList() string {
	lines := make([]string, 0, len(Templates))
	for i, t := range Templates {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.DisplayName))
	}
	return strings.Join(lines, "\n")
}

// WelcomeText — первое сообщение любой сессии.
func WelcomeText() string {
	var list []string
	for _, c := range Commands {
		desc := c.Description()
		if c == CommandHelp {
			desc = "Show available commands"
		}
		list = append(list, fmt.Sprintf("%s - %s", c, desc))
	}
	return "Welcome! I can help you create and manage social media posts. Try these commands:\n\n" + strings.Join(list, "\n")
}
