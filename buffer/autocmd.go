package buffer

import "fmt"

// RPC method names registered by the host process
const (
	MethodEvent      = "inlinechange_event"
	MethodToggle     = "inlinechange_toggle"
	MethodRebaseline = "inlinechange_rebaseline"
)

// ConfigEvent is the User autocmd that reloads settings:
//
//	:doautocmd User InlineChangeHighlighterConfig
const ConfigEvent = "InlineChangeHighlighterConfig"

const augroup = "InlineChangeHighlighter"

// autocmd events mapped to the notification they send
var autocmds = []struct {
	events string
	name   string
}{
	{"BufReadPost,BufNewFile", "open"},
	{"TextChanged,TextChangedI", "changed"},
	{"BufWritePost", "saved"},
	{"BufDelete", "closed"},
	{"WinEnter,BufWinEnter", "win_enter"},
}

// Autocmds returns the ex commands wiring editor events and user commands to channel
func Autocmds(channel int) []string {
	notify := func(name string) string {
		return fmt.Sprintf("call rpcnotify(%d, '%s', '%s', str2nr(expand('<abuf>')), win_getid())", channel, MethodEvent, name)
	}

	cmds := []string{
		"augroup " + augroup,
		"autocmd!",
	}
	for _, a := range autocmds {
		cmds = append(cmds, fmt.Sprintf("autocmd %s * %s", a.events, notify(a.name)))
	}
	cmds = append(cmds,
		fmt.Sprintf("autocmd User %s %s", ConfigEvent, notify("config_changed")),
		"augroup END",
		fmt.Sprintf("command! InlineChangeToggle call rpcrequest(%d, '%s')", channel, MethodToggle),
		fmt.Sprintf("command! InlineChangeRebaseline call rpcrequest(%d, '%s')", channel, MethodRebaseline),
	)
	return cmds
}

// RemoveAutocmds undoes Autocmds
func RemoveAutocmds() []string {
	return []string{
		"silent! autocmd! " + augroup,
		"silent! augroup! " + augroup,
		"silent! delcommand InlineChangeToggle",
		"silent! delcommand InlineChangeRebaseline",
	}
}
