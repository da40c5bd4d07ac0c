package discord

import (
	"strconv"
	"unicode/utf8"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/render"
	"github.com/ashureev/recruitbot/internal/surface"
	"github.com/bwmarrin/discordgo"
)

// Creation flow steps carried in component custom ids.
const (
	actionCapacity = "capacity"
	actionDetails  = "details"

	detailsInputID = "extra_text"
)

var buttonStyles = map[surface.ButtonStyle]discordgo.ButtonStyle{
	surface.StylePrimary:   discordgo.PrimaryButton,
	surface.StyleSecondary: discordgo.SecondaryButton,
	surface.StyleSuccess:   discordgo.SuccessButton,
	surface.StyleDanger:    discordgo.DangerButton,
}

func embeds(doc *surface.Document) []*discordgo.MessageEmbed {
	if doc == nil {
		return nil
	}
	return []*discordgo.MessageEmbed{{
		Title:       doc.Title,
		Description: doc.Description,
		Color:       doc.Color,
		URL:         doc.URL,
	}}
}

func components(buttons []surface.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	row := discordgo.ActionsRow{Components: make([]discordgo.MessageComponent, 0, len(buttons))}
	for _, b := range buttons {
		style, ok := buttonStyles[b.Style]
		if !ok {
			style = discordgo.SecondaryButton
		}
		row.Components = append(row.Components, discordgo.Button{
			Label:    b.Label,
			Style:    style,
			Disabled: b.Disabled,
			CustomID: b.CustomID,
		})
	}
	return []discordgo.MessageComponent{row}
}

// capacitySelect offers 2..maxCapacity plus an unlimited option.
func capacitySelect(draftID string, maxCapacity int) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, maxCapacity)
	for n := 2; n <= maxCapacity; n++ {
		options = append(options, discordgo.SelectMenuOption{
			Label: strconv.Itoa(n) + "명",
			Value: strconv.Itoa(n),
		})
	}
	options = append(options, discordgo.SelectMenuOption{
		Label: domain.UnlimitedLabel,
		Value: domain.UnlimitedLabel,
	})

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    render.CustomID(actionCapacity, draftID),
				Placeholder: "모집 인원을 선택하세요",
				Options:     options,
			},
		}},
	}
}

// modalTitleMaxLen is the Discord limit on modal titles, in characters.
const modalTitleMaxLen = 45

// modalTitle shortens the game name so the title fits the modal limit.
func modalTitle(gameName string) string {
	const suffix = " 모집"
	room := modalTitleMaxLen - utf8.RuneCountInString(suffix)
	if r := []rune(gameName); len(r) > room {
		gameName = string(r[:room-1]) + "…"
	}
	return gameName + suffix
}

// detailsModal asks for the optional description.
func detailsModal(draftID, gameName string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: render.CustomID(actionDetails, draftID),
		Title:    modalTitle(gameName),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    detailsInputID,
					Label:       "설명 (선택)",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "예: 초보 환영, 디스코드 필수",
					Required:    false,
					MaxLength:   domain.MaxExtraTextLen,
				},
			}},
		},
	}
}

// modalValue returns the submitted value of the input with customID.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
