package handler

import (
	"cmp"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommand returns a deterministic SHA-1 of a command's stable fields.
// Remote-only fields (ids, versions, application id) are ignored.
func hashCommand(c *discordgo.ApplicationCommand) string {
	typ := c.Type
	if typ == 0 {
		typ = discordgo.ChatApplicationCommand
	}
	stable := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        typ,
	}
	if c.NameLocalizations != nil && len(*c.NameLocalizations) > 0 {
		stable["name_localizations"] = *c.NameLocalizations
	}
	if c.DescriptionLocalizations != nil && len(*c.DescriptionLocalizations) > 0 {
		stable["description_localizations"] = *c.DescriptionLocalizations
	}
	if c.DefaultMemberPermissions != nil {
		stable["default_member_permissions"] = *c.DefaultMemberPermissions
	}
	if c.NSFW != nil && *c.NSFW {
		stable["nsfw"] = true
	}
	if c.Contexts != nil && len(*c.Contexts) > 0 {
		stable["contexts"] = sorted(*c.Contexts)
	}
	// Discord reports guild install for commands created without a value.
	integrations := []discordgo.ApplicationIntegrationType{discordgo.ApplicationIntegrationGuildInstall}
	if c.IntegrationTypes != nil && len(*c.IntegrationTypes) > 0 {
		integrations = *c.IntegrationTypes
	}
	stable["integration_types"] = sorted(integrations)
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if o.Autocomplete {
			entry["autocomplete"] = true
		}
		if len(o.NameLocalizations) > 0 {
			entry["name_localizations"] = o.NameLocalizations
		}
		if len(o.DescriptionLocalizations) > 0 {
			entry["description_localizations"] = o.DescriptionLocalizations
		}
		if len(o.ChannelTypes) > 0 {
			entry["channel_types"] = o.ChannelTypes
		}
		if o.MinValue != nil {
			entry["min_value"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max_value"] = o.MaxValue
		}
		if o.MinLength != nil {
			entry["min_length"] = *o.MinLength
		}
		if o.MaxLength != 0 {
			entry["max_length"] = o.MaxLength
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				// remote values decode as float64, local ones are usually int
				choice := map[string]any{"name": ch.Name, "value": fmt.Sprint(ch.Value)}
				if len(ch.NameLocalizations) > 0 {
					choice["name_localizations"] = ch.NameLocalizations
				}
				choices[j] = choice
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}

func sorted[T cmp.Ordered](values []T) []T {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

// sameCommandSet reports whether remote already matches local, ignoring order.
func sameCommandSet(remote, local []*discordgo.ApplicationCommand) bool {
	if len(remote) != len(local) {
		return false
	}
	want := make(map[string]int, len(local))
	for _, c := range local {
		want[hashCommand(c)]++
	}
	for _, c := range remote {
		h := hashCommand(c)
		if want[h] == 0 {
			return false
		}
		want[h]--
	}
	return true
}
