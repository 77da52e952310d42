package conversation

import (
	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/settings"
)

// Callback data prefixes and values.
const (
	prefixMenu       = "menu"
	prefixAdmin      = "admin"
	prefixUserAction = "user_action"
	prefixLogAction  = "log_action"
	prefixFileType   = "file_type"
	prefixReplace    = "replace"

	CallbackMenuUpload = "menu:upload"
	CallbackMenuAdmin  = "menu:admin"
	CallbackMenuBack   = "menu:back"

	CallbackAdminUsers    = "admin:users"
	CallbackAdminTemplate = "admin:template"
	CallbackAdminLogging  = "admin:logging"
	CallbackAdminBack     = "admin:back"

	CallbackMakeAdmin   = "user_action:make_admin"
	CallbackRemoveAdmin = "user_action:remove_admin"

	CallbackToggleRegistrations = "log_action:toggle_reg"
	CallbackToggleUploads       = "log_action:toggle_upload"
	CallbackSetLogChat          = "log_action:set_chat"

	CallbackTypeEssay        = "file_type:essay"
	CallbackTypePresentation = "file_type:presentation"

	CallbackReplaceConfirm = "replace:confirm"
	CallbackReplaceCancel  = "replace:cancel"
)

func column(buttons ...Button) [][]Button {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return rows
}

func mainMenu(isAdmin bool) [][]Button {
	buttons := []Button{{Text: "Upload file", Data: CallbackMenuUpload}}
	if isAdmin {
		buttons = append(buttons, Button{Text: "Admin panel", Data: CallbackMenuAdmin})
	}
	return column(buttons...)
}

func adminMenu() [][]Button {
	return column(
		Button{Text: "Manage users", Data: CallbackAdminUsers},
		Button{Text: "File name template", Data: CallbackAdminTemplate},
		Button{Text: "Logging settings", Data: CallbackAdminLogging},
		Button{Text: "Back", Data: CallbackMenuBack},
	)
}

func userManagementMenu() [][]Button {
	return column(
		Button{Text: "Make admin", Data: CallbackMakeAdmin},
		Button{Text: "Remove admin", Data: CallbackRemoveAdmin},
		Button{Text: "Back", Data: CallbackAdminBack},
	)
}

func loggingMenu(ls *settings.LogSettings) [][]Button {
	return column(
		Button{Text: "Log registrations: " + onOff(ls.LogRegistrations), Data: CallbackToggleRegistrations},
		Button{Text: "Log uploads: " + onOff(ls.LogFileUploads), Data: CallbackToggleUploads},
		Button{Text: "Change chat ID", Data: CallbackSetLogChat},
		Button{Text: "Back", Data: CallbackAdminBack},
	)
}

func fileTypeMenu() [][]Button {
	return [][]Button{{
		{Text: document.TypeEssay.Label(), Data: CallbackTypeEssay},
		{Text: document.TypePresentation.Label(), Data: CallbackTypePresentation},
	}}
}

func replaceMenu() [][]Button {
	return [][]Button{{
		{Text: "Replace", Data: CallbackReplaceConfirm},
		{Text: "Cancel", Data: CallbackReplaceCancel},
	}}
}
