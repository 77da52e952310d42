package conversation

import (
	"fmt"
	"strings"

	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/settings"
	"filesend-bot/internal/domain/similarity"
	"filesend-bot/internal/domain/user"
)

const (
	msgWelcome           = "Welcome! To register, please enter your full name."
	msgFullNameInvalid   = "Please enter your full name (at least first and last name)."
	msgFolderFailed      = "An error occurred while creating your folder. Please try again later."
	msgNotRegistered     = "You are not registered. Use /start to register."
	msgSendFile          = "Please send the file (essay or presentation)."
	msgSendDocument      = "Please send the file as a document."
	msgChooseType        = "Choose the file type:"
	msgChooseTypeButtons = "Please choose the file type using the buttons below."
	msgUploadFailed      = "An error occurred while uploading the file. Please try again later."
	msgUploadCancelled   = "Upload cancelled. The existing file was kept."
	msgReplaceButtons    = "Please confirm or cancel the replacement using the buttons below."
	msgMainMenu          = "Main menu:"
	msgAdminPanel        = "Admin panel:"
	msgNoAdminRights     = "You do not have administrator rights."
	msgEnterUserID       = "Enter the user's Telegram ID:"
	msgInvalidUserID     = "Invalid ID. Please enter a numeric ID:"
	msgUserNotFound      = "User not found. Check the ID and try again."
	msgTemplateEmpty     = "The template cannot be empty. Enter the template again:"
	msgEnterLogChat      = "Enter the chat ID for logs (or 'clear' to remove it):"
	msgLogChatEmpty      = "The chat ID cannot be empty. Enter it again (or 'clear' to remove it):"
	msgLogChatCleared    = "Log chat ID removed."
	msgFirstAdmin        = "You have been appointed as the first administrator."
	msgAdminExists       = "An administrator already exists. Only the current administrator can appoint new ones."
	msgExpired           = "This action is no longer available. Use /start to open the menu."
	msgUseMenu           = "Use the menu below or /start."
	msgUnregisteredHint  = "Use /start to register."
	msgInternalError     = "An error occurred. Please try again later."
	msgAlreadyRegistered = "You are already registered."
	msgUserListEmpty     = "No users registered yet."
	msgNotSet            = "Not set"
)

func greetRegistered(fullName string) string {
	return fmt.Sprintf("Hello, %s! %s", fullName, msgAlreadyRegistered)
}

func registered(fullName string) string {
	return fmt.Sprintf("Registration successful! Your full name: %s", fullName)
}

func replacePrompt(fileName string) string {
	return fmt.Sprintf("A file named %s already exists. Replace it?", fileName)
}

func uploaded(result *document.StoreResult) string {
	var b strings.Builder
	if result.Replaced {
		fmt.Fprintf(&b, "File replaced successfully: %s", result.File.FileName)
	} else {
		fmt.Fprintf(&b, "File uploaded successfully as %s", result.File.FileName)
	}
	if len(result.Matches) > 0 {
		b.WriteString("\n\nWarning: similar works found:")
		for _, m := range result.Matches {
			b.WriteString("\n")
			b.WriteString(matchLine(m))
		}
	}
	return b.String()
}

func matchLine(m similarity.Match) string {
	return fmt.Sprintf("- %s (%s): %s%%", m.FileName, m.OwnerName, m.Ratio.StringFixed(2))
}

// UserLine formats one entry of the admin user list.
func UserLine(u *user.User) string {
	admin := "No"
	if u.IsAdmin {
		admin = "Yes"
	}
	return fmt.Sprintf("%d. %s (ID: %d, Admin: %s)", u.ID, u.FullName, u.TelegramID, admin)
}

func userList(users []*user.User) string {
	if len(users) == 0 {
		return msgUserListEmpty
	}
	lines := make([]string, 0, len(users)+1)
	lines = append(lines, "Users:")
	for _, u := range users {
		lines = append(lines, UserLine(u))
	}
	return strings.Join(lines, "\n")
}

func adminChanged(u *user.User) string {
	if u.IsAdmin {
		return fmt.Sprintf("User %s is now an administrator.", u.FullName)
	}
	return fmt.Sprintf("User %s is no longer an administrator.", u.FullName)
}

func templatePrompt(current string) string {
	return fmt.Sprintf("Current file name template: %s\n\n"+
		"Available placeholders:\n"+
		"%s - the user's surname\n"+
		"%s - file type (Essay/Presentation)\n\n"+
		"Enter a new template:", current, settings.PlaceholderSurname, settings.PlaceholderType)
}

func templateUpdated(t string) string {
	return fmt.Sprintf("Template updated: %s", t)
}

func loggingScreen(ls *settings.LogSettings) string {
	chat := ls.ChatID
	if !ls.HasDestination() {
		chat = msgNotSet
	}
	return fmt.Sprintf("Logging settings:\nLog chat ID: %s", chat)
}

func logChatSet(chat string) string {
	return fmt.Sprintf("Log chat ID set: %s", chat)
}

func onOff(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}
