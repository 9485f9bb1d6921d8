package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/tailored-agentic-units/relay/actions"
	"github.com/tailored-agentic-units/relay/core/protocol"
)

var triviaList = []string{
	"Did you know that cats have a free-floating collarbone? Unlike humans, whose collarbones form a solid connection between the shoulder blades and the breastbone, a cat's clavicle can rotate and move independently. This lets them squeeze through tight spaces easily and is one reason cats are such skilled climbers.",
	"Cats have a remarkable sense of balance thanks to their inner ear structure and the vestibular system. It powers the 'righting reflex': cats reorient themselves mid-air by twisting their bodies so they land on their feet, minimizing the impact of a fall.",
	"Cats groom each other in a behavior known as 'allogrooming'. It is most common between closely bonded cats, such as littermates, and serves to strengthen social bonds, maintain cleanliness, and provide comfort. Allogrooming is a display of trust and affection among feline companions.",
	"Beyond the classic meow, cats have an extensive vocal repertoire: chirps, trills, purrs, hisses, and yowls each serve a different purpose. Meows often greet humans or ask for attention, purring usually signals contentment, while hisses and growls signal fear or aggression.",
}

var catNames = map[string][]string{
	"gender-neutral":  {"Riley", "Charlie", "Pepper", "Bailey", "Sunny"},
	"playful":         {"Whiskers", "Sprinkles", "Bubbles", "Ziggy", "Pixie"},
	"elegant":         {"Luna", "Sebastian", "Duchess", "Jasper", "Aurora"},
	"nature-inspired": {"Willow", "Leo", "Ivy", "River", "Daisy"},
	"food-themed":     {"Toffee", "Mochi", "Peanut", "Olive", "Cocoa"},
	"mythology":       {"Athena", "Apollo", "Artemis", "Loki", "Freya"},
	"literary":        {"Merlin", "Luna", "Gandalf", "Hermione", "Bilbo"},
	"history":         {"Cleopatra", "Leonardo", "Mozart", "Marie", "Shakespeare"},
}

func registerBuiltinActions() {
	must(actions.Register(protocol.ActionDef{
		Name:        "get_daily_cat_trivia",
		Description: "Returns one piece of cat trivia.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, handleCatTrivia))

	must(actions.Register(protocol.ActionDef{
		Name:        "generate_cat_name",
		Description: "Suggests a cat name for the given naming theme.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"theme": map[string]any{
					"type":        "string",
					"description": "Naming theme, e.g. playful, elegant, mythology.",
					"enum": []string{
						"gender-neutral", "playful", "elegant", "nature-inspired",
						"food-themed", "mythology", "literary", "history",
					},
				},
			},
		},
	}, handleCatName))
}

func handleCatTrivia(_ context.Context, _ json.RawMessage) (any, error) {
	trivia := triviaList[rand.IntN(len(triviaList))]
	return map[string]string{
		"message": "Here's a cat trivia for you:\n\n" + trivia,
	}, nil
}

func handleCatName(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Theme string `json:"theme"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if params.Theme == "" {
		params.Theme = "gender-neutral"
	}

	names, ok := catNames[params.Theme]
	if !ok {
		return nil, fmt.Errorf("unknown theme: %s", params.Theme)
	}

	return map[string]string{
		"theme": params.Theme,
		"name":  "Here's a cat name for you:\n\n" + names[rand.IntN(len(names))],
	}, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
