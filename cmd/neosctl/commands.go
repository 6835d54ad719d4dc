package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	neos "github.com/neos-go/neos-go"
	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/internal/config"
	"github.com/neos-go/neos-go/types"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"ping", "check that the API is reachable", runPing},
		{"stats", "print online user and instance counts", runStats},
		{"user", "show a user by U- id or username", runUser},
		{"sessions", "list public sessions", runSessions},
		{"session", "show a single session", runSession},
		{"group", "show a group", runGroup},
		{"login", "create a session and save it", runLogin},
		{"logout", "destroy the saved session", runLogout},
		{"extend", "extend the saved session", runExtend},
		{"friends", "list friends of the logged in user", runFriends},
		{"messages", "list messages of the logged in user", runMessages},
		{"send", "send a text message", runSend},
		{"export", "serve Neos statistics as Prometheus metrics", runExport},
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// parseFlags parses args into fs and checks the positional argument count.
func parseFlags(fs *pflag.FlagSet, args []string, minArgs int, maxArgs int) ([]string, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := fs.Args()
	if len(rest) < minArgs || (maxArgs >= 0 && len(rest) > maxArgs) {
		return nil, fmt.Errorf("%w: unexpected number of arguments", errUsage)
	}
	return rest, nil
}

func runPing(ctx context.Context, a *app, args []string) error {
	if _, err := parseFlags(pflag.NewFlagSet("ping", pflag.ContinueOnError), args, 0, 0); err != nil {
		return err
	}
	client := a.client()
	if err := a.do(ctx, "ping", func() error { return client.Testing().Ping(ctx) }); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, "pong")
	return err
}

type statsOutput struct {
	OnlineUsers     uint32 `json:"onlineUsers"`
	OnlineInstances uint32 `json:"onlineInstances"`
}

func fetchStats(ctx context.Context, a *app, client neos.AnyClient) (statsOutput, error) {
	var out statsOutput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.do(gctx, "online-users", func() error {
			n, err := client.Stats().OnlineUsers(gctx)
			out.OnlineUsers = n
			return err
		})
	})
	g.Go(func() error {
		return a.do(gctx, "online-instances", func() error {
			n, err := client.Stats().OnlineInstances(gctx)
			out.OnlineInstances = n
			return err
		})
	})
	return out, g.Wait()
}

func runStats(ctx context.Context, a *app, args []string) error {
	if _, err := parseFlags(pflag.NewFlagSet("stats", pflag.ContinueOnError), args, 0, 0); err != nil {
		return err
	}
	out, err := fetchStats(ctx, a, a.client())
	if err != nil {
		return err
	}
	return a.print(out)
}

func userQuery(arg string) types.UserIdOrUsername {
	if userId, err := id.ParseUser(arg); err == nil {
		return types.ByUserId(userId)
	}
	return types.ByUsername(arg)
}

func runUser(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("user", pflag.ContinueOnError)
	search := fs.Bool("search", false, "search users by name instead")
	status := fs.Bool("status", false, "also fetch the user's online status")
	rest, err := parseFlags(fs, args, 1, 1)
	if err != nil {
		return err
	}

	client := a.client()
	if *search {
		var users []types.User
		err := a.do(ctx, "search-users", func() (err error) {
			users, err = client.Users().Search(ctx, rest[0])
			return err
		})
		if err != nil {
			return err
		}
		return a.print(users)
	}

	var user *types.User
	err = a.do(ctx, "get-user", func() (err error) {
		user, err = client.Users().Get(ctx, userQuery(rest[0]))
		return err
	})
	if err != nil {
		return err
	}
	if !*status {
		return a.print(user)
	}

	var userStatus *types.UserStatus
	err = a.do(ctx, "get-user-status", func() (err error) {
		userStatus, err = client.Users().Status(ctx, user.Id)
		return err
	})
	if err != nil {
		return err
	}
	return a.print(struct {
		*types.User
		Status *types.UserStatus `json:"status"`
	}{user, userStatus})
}

type sessionLine struct {
	Id          id.Session `json:"sessionId"`
	Name        string     `json:"name"`
	Host        string     `json:"hostUsername"`
	ActiveUsers uint8      `json:"activeUsers"`
	MaxUsers    uint8      `json:"maxUsers"`
}

func runSessions(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("sessions", pflag.ContinueOnError)
	filter := fs.StringP("name", "n", "", "only sessions whose name contains this text")
	full := fs.Bool("full", false, "print complete session objects")
	if _, err := parseFlags(fs, args, 0, 0); err != nil {
		return err
	}

	client := a.client()
	var sessions []types.SessionInfo
	err := a.do(ctx, "list-sessions", func() (err error) {
		sessions, err = client.Sessions().List(ctx)
		return err
	})
	if err != nil {
		return err
	}

	needle := strings.ToLower(*filter)
	matched := make([]types.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		if needle == "" || strings.Contains(strings.ToLower(s.StrippedName()), needle) {
			matched = append(matched, s)
		}
	}
	if *full {
		return a.print(matched)
	}

	lines := make([]sessionLine, 0, len(matched))
	for _, s := range matched {
		lines = append(lines, sessionLine{
			Id:          s.Id,
			Name:        s.StrippedName(),
			Host:        s.HostUsername,
			ActiveUsers: s.ActiveUsers,
			MaxUsers:    s.MaxUsers,
		})
	}
	return a.print(lines)
}

func runSession(ctx context.Context, a *app, args []string) error {
	rest, err := parseFlags(pflag.NewFlagSet("session", pflag.ContinueOnError), args, 1, 1)
	if err != nil {
		return err
	}
	sessionId, err := id.ParseSession(rest[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	client := a.client()
	var session *types.SessionInfo
	err = a.do(ctx, "get-session", func() (err error) {
		session, err = client.Sessions().Get(ctx, sessionId)
		return err
	})
	if err != nil {
		return err
	}
	return a.print(session)
}

func runGroup(ctx context.Context, a *app, args []string) error {
	rest, err := parseFlags(pflag.NewFlagSet("group", pflag.ContinueOnError), args, 1, 1)
	if err != nil {
		return err
	}
	groupId, err := id.ParseGroup(rest[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	client := a.client()
	var group *types.Group
	err = a.do(ctx, "get-group", func() (err error) {
		group, err = client.Groups().Get(ctx, groupId)
		return err
	})
	if err != nil {
		return err
	}
	return a.print(group)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	username := fs.StringP("username", "u", a.cfg.Login.Username, "username, U- id or email to log in with")
	totp := fs.String("totp", a.cfg.Login.Totp, "two factor code")
	rememberMe := fs.Bool("remember-me", a.cfg.Login.RememberMe, "request a long lived session")
	if _, err := parseFlags(fs, args, 0, 0); err != nil {
		return err
	}
	if *username == "" || a.cfg.Login.Password == "" {
		return fmt.Errorf("%w: a username and NEOS_PASSWORD are required", errUsage)
	}

	credentials := newLoginCredentials(*username, a.cfg.Login.Password).
		WithGeneratedMachineId().
		WithRememberMe(*rememberMe)
	if *totp != "" {
		credentials = credentials.WithTotp(*totp)
	}
	if err := credentials.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	// Not retried: a failed login should not be replayed with the same TOTP.
	client, err := a.unauthenticated().Login(ctx, credentials)
	if err != nil {
		return err
	}
	session, _ := client.Session()
	if err := config.SaveSession(a.cfg.SessionFile, session); err != nil {
		return err
	}

	a.log.Infof("logged in as %s, session expires %s", session.UserId, session.Expiration.Format(time.RFC3339))
	_, err = fmt.Fprintln(a.stdout, session.UserId)
	return err
}

func newLoginCredentials(identifier string, password string) types.LoginCredentials {
	if strings.Contains(identifier, "@") {
		return types.NewLoginCredentials(types.Email(identifier), password)
	}
	if _, err := id.ParseUser(identifier); err == nil {
		return types.NewLoginCredentials(types.UserIdIdentifier(identifier), password)
	}
	return types.NewLoginCredentials(types.Username(identifier), password)
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if _, err := parseFlags(pflag.NewFlagSet("logout", pflag.ContinueOnError), args, 0, 0); err != nil {
		return err
	}
	client, err := a.authenticated()
	if err != nil {
		return err
	}
	if _, err := client.Logout(ctx); err != nil {
		return err
	}
	return config.RemoveSession(a.cfg.SessionFile)
}

func runExtend(ctx context.Context, a *app, args []string) error {
	if _, err := parseFlags(pflag.NewFlagSet("extend", pflag.ContinueOnError), args, 0, 0); err != nil {
		return err
	}
	client, err := a.authenticated()
	if err != nil {
		return err
	}
	return a.do(ctx, "extend-session", func() error { return client.ExtendSession(ctx) })
}

func runFriends(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("friends", pflag.ContinueOnError)
	since := fs.String("since", "", "only friends whose status changed after this RFC3339 time")
	if _, err := parseFlags(fs, args, 0, 0); err != nil {
		return err
	}
	sinceTime, err := parseOptionalTime(*since)
	if err != nil {
		return err
	}
	client, err := a.authenticated()
	if err != nil {
		return err
	}

	var friends []types.Friend
	err = a.do(ctx, "list-friends", func() (err error) {
		friends, err = client.Friends().List(ctx, sinceTime)
		return err
	})
	if err != nil {
		return err
	}
	return a.print(friends)
}

func runMessages(ctx context.Context, a *app, args []string) error {
	query := types.DefaultMessagesQuery()
	fs := pflag.NewFlagSet("messages", pflag.ContinueOnError)
	fs.Uint16Var(&query.MaxAmount, "max", query.MaxAmount, "maximum number of messages")
	fs.BoolVar(&query.UnreadOnly, "unread", false, "only unread messages")
	since := fs.String("since", "", "only messages sent after this RFC3339 time")
	with := fs.String("with", "", "only the conversation with this U- id")
	if _, err := parseFlags(fs, args, 0, 0); err != nil {
		return err
	}

	var err error
	if query.FromTime, err = parseOptionalTime(*since); err != nil {
		return err
	}
	if *with != "" {
		userId, err := id.ParseUser(*with)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		query.WithUser = &userId
	}

	client, err := a.authenticated()
	if err != nil {
		return err
	}
	var messages []types.Message
	err = a.do(ctx, "list-messages", func() (err error) {
		messages, err = client.Messages().List(ctx, query)
		return err
	})
	if err != nil {
		return err
	}
	return a.print(messages)
}

func runSend(ctx context.Context, a *app, args []string) error {
	rest, err := parseFlags(pflag.NewFlagSet("send", pflag.ContinueOnError), args, 2, -1)
	if err != nil {
		return err
	}
	recipient, err := id.ParseUser(rest[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	client, err := a.authenticated()
	if err != nil {
		return err
	}

	// Built once so retries resend the same message id.
	message, err := types.NewTextMessage(client.UserId(), recipient, strings.Join(rest[1:], " "))
	if err != nil {
		return err
	}
	var sent *types.Message
	err = a.do(ctx, "send-message", func() (err error) {
		sent, err = client.Messages().Send(ctx, message)
		return err
	})
	if err != nil {
		return err
	}
	return a.print(sent)
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return &t, nil
}
