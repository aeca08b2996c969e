package handlers

import (
	"context"

	"github.com/Spok95/lms-bot/internal/bot/auth"
)

func loginScreen(context.Context, View) (Page, error) {
	dlg, rep := auth.StartLogin()
	return Page{Text: rep.Text, Markup: rep.Markup, Dialog: dlg}, nil
}

func registerScreen(context.Context, View) (Page, error) {
	dlg, rep := auth.StartRegister()
	return Page{Text: rep.Text, Markup: rep.Markup, Dialog: dlg}, nil
}
