// Package permissions computes effective Discord permissions from roles and
// channel overwrites and compares roles in the guild hierarchy.
package permissions

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Permission bits. The discordgo constants are reused where they exist.
const (
	CreateInstantInvite = int64(discordgo.PermissionCreateInstantInvite)
	KickMembers         = int64(discordgo.PermissionKickMembers)
	BanMembers          = int64(discordgo.PermissionBanMembers)
	Administrator       = int64(discordgo.PermissionAdministrator)
	ManageChannels      = int64(discordgo.PermissionManageChannels)
	ManageGuild         = int64(discordgo.PermissionManageServer)
	AddReactions        = int64(discordgo.PermissionAddReactions)
	ViewAuditLog        = int64(discordgo.PermissionViewAuditLogs)
	ViewChannel         = int64(discordgo.PermissionViewChannel)
	SendMessages        = int64(discordgo.PermissionSendMessages)
	SendTTSMessages     = int64(discordgo.PermissionSendTTSMessages)
	ManageMessages      = int64(discordgo.PermissionManageMessages)
	EmbedLinks          = int64(discordgo.PermissionEmbedLinks)
	AttachFiles         = int64(discordgo.PermissionAttachFiles)
	ReadMessageHistory  = int64(discordgo.PermissionReadMessageHistory)
	MentionEveryone     = int64(discordgo.PermissionMentionEveryone)
	UseExternalEmojis   = int64(discordgo.PermissionUseExternalEmojis)
	Connect             = int64(discordgo.PermissionVoiceConnect)
	Speak               = int64(discordgo.PermissionVoiceSpeak)
	MuteMembers         = int64(discordgo.PermissionVoiceMuteMembers)
	DeafenMembers       = int64(discordgo.PermissionVoiceDeafenMembers)
	MoveMembers         = int64(discordgo.PermissionVoiceMoveMembers)
	UseVAD              = int64(discordgo.PermissionVoiceUseVAD)
	ChangeNickname      = int64(discordgo.PermissionChangeNickname)
	ManageNicknames     = int64(discordgo.PermissionManageNicknames)
	ManageRoles         = int64(discordgo.PermissionManageRoles)
	ManageWebhooks      = int64(discordgo.PermissionManageWebhooks)
	ManageEmojis        = int64(1 << 30)
)

var names = map[int64]string{
	CreateInstantInvite: "CREATE_INSTANT_INVITE",
	KickMembers:         "KICK_MEMBERS",
	BanMembers:          "BAN_MEMBERS",
	Administrator:       "ADMINISTRATOR",
	ManageChannels:      "MANAGE_CHANNELS",
	ManageGuild:         "MANAGE_GUILD",
	AddReactions:        "ADD_REACTIONS",
	ViewAuditLog:        "VIEW_AUDIT_LOG",
	ViewChannel:         "VIEW_CHANNEL",
	SendMessages:        "SEND_MESSAGES",
	SendTTSMessages:     "SEND_TTS_MESSAGES",
	ManageMessages:      "MANAGE_MESSAGES",
	EmbedLinks:          "EMBED_LINKS",
	AttachFiles:         "ATTACH_FILES",
	ReadMessageHistory:  "READ_MESSAGE_HISTORY",
	MentionEveryone:     "MENTION_EVERYONE",
	UseExternalEmojis:   "USE_EXTERNAL_EMOJIS",
	Connect:             "CONNECT",
	Speak:               "SPEAK",
	MuteMembers:         "MUTE_MEMBERS",
	DeafenMembers:       "DEAFEN_MEMBERS",
	MoveMembers:         "MOVE_MEMBERS",
	UseVAD:              "USE_VAD",
	ChangeNickname:      "CHANGE_NICKNAME",
	ManageNicknames:     "MANAGE_NICKNAMES",
	ManageRoles:         "MANAGE_ROLES",
	ManageWebhooks:      "MANAGE_WEBHOOKS",
	ManageEmojis:        "MANAGE_EMOJIS",
}

var byName = func() map[string]int64 {
	m := make(map[string]int64, len(names))
	for bit, n := range names {
		m[n] = bit
	}
	return m
}()

// All is every permission bit the mock knows about.
var All = func() int64 {
	var all int64
	for bit := range names {
		all |= bit
	}
	return all
}()

// DefaultEveryone is the permission set a new guild grants @everyone.
const DefaultEveryone = CreateInstantInvite | ViewChannel | SendMessages | SendTTSMessages |
	EmbedLinks | AttachFiles | ReadMessageHistory | MentionEveryone | UseExternalEmojis |
	AddReactions | Connect | Speak | UseVAD | ChangeNickname

// Has reports whether set grants every bit of perm. ADMINISTRATOR grants
// everything.
func Has(set, perm int64) bool {
	if set&Administrator != 0 {
		return true
	}
	return set&perm == perm
}

// Missing returns the bits of perm that set does not grant.
func Missing(set, perm int64) int64 {
	if set&Administrator != 0 {
		return 0
	}
	return perm &^ set
}

// Names returns the flag names of the bits set in perm, ordered by bit.
func Names(perm int64) []string {
	var out []string
	for perm != 0 {
		bit := int64(1) << bits.TrailingZeros64(uint64(perm))
		perm &^= bit
		if n, ok := names[bit]; ok {
			out = append(out, n)
		} else {
			out = append(out, "UNKNOWN_"+strconv.FormatInt(bit, 10))
		}
	}
	return out
}

// Parse is the inverse of Names. Flag names are case-insensitive; a bare
// integer is taken as a raw bit set.
func Parse(flags []string) (int64, error) {
	var perm int64
	for _, f := range flags {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if n, err := strconv.ParseInt(f, 10, 64); err == nil {
			perm |= n
			continue
		}
		bit, ok := byName[f]
		if !ok {
			return 0, fmt.Errorf("permissions: unknown flag %q", f)
		}
		perm |= bit
	}
	return perm, nil
}

// Input is everything needed to compute a member's effective permissions.
type Input struct {
	GuildID string
	OwnerID string
	UserID  string

	// Everyone is the permission set of the @everyone role.
	Everyone int64
	// Roles maps each of the member's role IDs to that role's permissions.
	Roles map[string]int64
	// Overwrites are the channel's overwrites; nil for guild-level checks.
	Overwrites []*discordgo.PermissionOverwrite
}

// Compute returns the member's effective permission set. The owner and
// administrators hold every permission. Channel overwrites apply in order:
// the @everyone overwrite, the aggregate of the member's role overwrites, then
// the member's own overwrite.
func Compute(in Input) int64 {
	if in.UserID != "" && in.UserID == in.OwnerID {
		return All
	}

	base := in.Everyone
	for _, p := range in.Roles {
		base |= p
	}
	if base&Administrator != 0 {
		return All
	}
	if len(in.Overwrites) == 0 {
		return base
	}

	byID := make(map[string]*discordgo.PermissionOverwrite, len(in.Overwrites))
	for _, ow := range in.Overwrites {
		byID[ow.ID] = ow
	}

	perms := base
	if ow, ok := byID[in.GuildID]; ok && ow.Type == discordgo.PermissionOverwriteTypeRole {
		perms = (perms &^ ow.Deny) | ow.Allow
	}

	var allow, deny int64
	for roleID := range in.Roles {
		if ow, ok := byID[roleID]; ok && ow.Type == discordgo.PermissionOverwriteTypeRole {
			allow |= ow.Allow
			deny |= ow.Deny
		}
	}
	perms = (perms &^ deny) | allow

	if ow, ok := byID[in.UserID]; ok && ow.Type == discordgo.PermissionOverwriteTypeMember {
		perms = (perms &^ ow.Deny) | ow.Allow
	}
	return perms
}

// Rank positions a role in the hierarchy.
type Rank struct {
	ID       string
	Position int
}

// Compare orders two roles by hierarchy: a higher position ranks higher and,
// on equal positions, the older (numerically smaller) ID ranks higher. It
// returns a positive number when a outranks b.
func Compare(a, b Rank) int {
	if a.Position != b.Position {
		return a.Position - b.Position
	}
	x, _ := strconv.ParseUint(a.ID, 10, 64)
	y, _ := strconv.ParseUint(b.ID, 10, 64)
	switch {
	case x < y:
		return 1
	case x > y:
		return -1
	}
	return 0
}

// Outranks reports whether a is strictly above b.
func Outranks(a, b Rank) bool {
	return Compare(a, b) > 0
}

// SortDescending orders ranks from the top of the hierarchy down.
func SortDescending(ranks []Rank) {
	sort.SliceStable(ranks, func(i, j int) bool { return Compare(ranks[i], ranks[j]) > 0 })
}
