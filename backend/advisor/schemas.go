// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package advisor

import "google.golang.org/genai"

func str(desc string, enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc, Enum: enum}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func array(desc string, items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: items}
}

var winkContentSchema = object(
	[]string{"disclaimer", "possibleConditions", "resources"},
	map[string]*genai.Schema{
		"disclaimer": str("A mandatory, non-medical disclaimer stating this is not a diagnosis and a professional should be consulted. " +
			"It MUST include a recommendation to contact an emergency hotline (e.g., 988) for any immediate crisis."),
		"possibleConditions": array("A list of potential conditions related to the observations.", object(
			[]string{"name", "likelihood", "description"},
			map[string]*genai.Schema{
				"name":        str("The name of the potential condition."),
				"likelihood":  str("The estimated likelihood based on the provided symptoms.", "low", "medium", "high"),
				"description": str("A brief, gentle explanation of the condition."),
			},
		)),
		"resources": array("A list of helpful resources.", object(
			[]string{"title", "type", "description"},
			map[string]*genai.Schema{
				"title":       str("The title of the resource."),
				"type":        str("The type of resource.", "article", "product", "clinic", "support group"),
				"description": str("A short description of what the resource offers."),
			},
		)),
	},
)

var suggestionsSchema = object(
	[]string{"suggestions"},
	map[string]*genai.Schema{
		"suggestions": array("A list of 3-5 encouraging update sentences.", str("A short, positive observation.")),
	},
)

var socialPostSchema = object(
	[]string{"posts"},
	map[string]*genai.Schema{
		"posts": array("A list of generated social media posts.", object(
			[]string{"platform", "content"},
			map[string]*genai.Schema{
				"platform": str("The target social media platform.", "X", "Instagram", "Generic"),
				"content":  str("The content of the social media post, including hashtags."),
			},
		)),
	},
)

var giftCardSchema = object(
	[]string{"gift_cards"},
	map[string]*genai.Schema{
		"gift_cards": array("A list of 3-5 digital gift card suggestions.", object(
			[]string{"store", "category", "reasoning"},
			map[string]*genai.Schema{
				"store":     str("The name of the store or brand for the gift card (e.g., 'Starbucks', 'Amazon', 'Headspace')."),
				"category":  str("A brief category for the gift (e.g., 'Coffee & Treat', 'Books & Hobbies', 'Mindfulness App')."),
				"reasoning": str("A short, one-sentence reason why this gift card is a good fit based on the user's prompt."),
			},
		)),
	},
)

var moderationSchema = object(
	[]string{"is_safe"},
	map[string]*genai.Schema{
		"is_safe": {
			Type: genai.TypeBoolean,
			Description: "True if the content is a valid, non-malicious observation. False if it contains bullying, " +
				"harassment, threats, or is otherwise inappropriate for a supportive context.",
		},
		"reason": str("If not safe, a brief, user-facing explanation for why the content was rejected."),
	},
)
