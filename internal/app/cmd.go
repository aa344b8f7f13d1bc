package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はローカルのWeb UIサーバーを起動することを示す。
	CommandServe Command = "serve"
	// CommandLogin はターミナルからサインインすることを示す。
	CommandLogin Command = "login"
	// CommandLogout は保存済みのセッションを破棄することを示す。
	CommandLogout Command = "logout"
	// CommandWhoami は保存済みのセッションを表示することを示す。
	CommandWhoami Command = "whoami"
	// CommandMigrate はpostgresストレージのマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "login":
		return CommandLogin
	case "logout":
		return CommandLogout
	case "whoami":
		return CommandWhoami
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// Interactive はターミナルに結果を表示するコマンドかどうかを返す。
// これらのコマンドではログを標準エラー出力に分ける。
func (c Command) Interactive() bool {
	switch c {
	case CommandLogin, CommandLogout, CommandWhoami:
		return true
	default:
		return false
	}
}
