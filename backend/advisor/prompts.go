// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package advisor

import (
	"fmt"
	"strings"

	"github.com/efchatnet/winkdrops/backend/models"
)

const (
	contentInstruction = "You are a helpful, empathetic assistant for the WinkDrops app. Your role is to provide potential " +
		"insights based on user-observed symptoms. You are not a medical professional and must not provide a diagnosis. " +
		"All your responses should be supportive, gentle, and encourage seeking professional advice. You must include a " +
		"disclaimer that this is not a diagnosis and that a physician should be consulted for any health concerns. For " +
		"urgent mental health crises, the user should be directed to a hotline like 988 or local emergency services. " +
		"Generate at least 2 possible conditions, each with an estimated likelihood (low, medium, or high) based on the " +
		"observations, and a comprehensive list of at least 5 varied resources."

	suggestionsInstruction = "You are a helpful assistant for the WinkDrops app. Your role is to craft a list of positive, " +
		"encouraging follow-up sentences based on previous negative observations. Your response must be a JSON object " +
		"containing a 'suggestions' array of strings."

	giftInstruction = "You are a thoughtful gift suggestion assistant for the WinkDrops app. Your goal is to provide " +
		"creative and relevant digital gift card ideas based on a user's description of a person. The tone should be " +
		"helpful and positive."

	moderationInstruction = "You are a content moderator for a mental health support app called WinkDrops. Your primary " +
		"role is to ensure user-submitted observations are safe and not used for bullying or harassment. Be strict about " +
		"malicious content but lenient with phrasing that expresses genuine concern."

	geocodePrompt = `What city and country is at these coordinates? Please provide just the city and country name in "City, Country" format.`
)

func contentPrompt(observables []models.Observable) string {
	texts := make([]string, 0, len(observables))
	var avoid []string
	seen := map[string]bool{}
	for _, o := range observables {
		texts = append(texts, o.Text)
		for _, kw := range o.NegativeKeywords {
			if !seen[kw] {
				seen[kw] = true
				avoid = append(avoid, kw)
			}
		}
	}

	prompt := fmt.Sprintf("Based on the following observations about a person: %q, please provide a gentle and supportive "+
		"analysis. Do not use alarming language. This is for a caring friend to send anonymously.", strings.Join(texts, ", "))
	if len(avoid) > 0 {
		prompt += fmt.Sprintf(" \n\nIMPORTANT: Explicitly avoid mentioning or suggesting anything related to the following "+
			"topics: %q. Do not include these words or concepts in your response.", strings.Join(avoid, ", "))
	}
	return prompt
}

func suggestionsPrompt(observables []models.Observable) string {
	quoted := make([]string, 0, len(observables))
	for _, o := range observables {
		quoted = append(quoted, fmt.Sprintf("%q", o.Text))
	}
	return `A user previously sent a "Wink" based on these observations of concern: ` + strings.Join(quoted, ", ") + `.
They now want to send a positive follow-up message.
Please generate a list of 3-5 short, encouraging sentences that suggest a positive change related to the original observations.
The tone must be gentle, supportive, and phrased as a new observation.

Examples:
- Original: "Looks unusually tired or fatigued" -> One suggestion could be: "I've noticed you seem to have more energy lately."
- Original: "Seems more withdrawn or isolated" -> One suggestion could be: "It was so good to see you connecting with others recently."
- Original: "Neglecting responsibilities" -> One suggestion could be: "You've been so on top of things lately, it's great to see."

Now, generate a JSON object with a "suggestions" array containing 3 to 5 suitable update strings for the original observations provided.`
}

func conditionNames(conditions []models.PossibleCondition) string {
	names := make([]string, 0, len(conditions))
	for _, c := range conditions {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func localResourcesPrompt(conditions []models.PossibleCondition) string {
	return "For a person experiencing symptoms related to " + conditionNames(conditions) + ", find nearby supportive " +
		"resources like clinics, therapists, pharmacies, or support groups. Provide contact information and addresses " +
		"where possible, formatted as markdown."
}

func socialResourcesPrompt(conditions []models.PossibleCondition) string {
	return "Find online communities, forums, and supportive social media discussions for people dealing with " +
		conditionNames(conditions) + ". Summarize the sentiment and provide links to relevant public posts, articles, " +
		"or groups, formatted as markdown."
}

func socialPostsPrompt(conditions []models.PossibleCondition, resources []models.Resource, keywords string) string {
	var cond, res strings.Builder
	for _, c := range conditions {
		fmt.Fprintf(&cond, "%s: %s\n", c.Name, c.Description)
	}
	for _, r := range resources {
		fmt.Fprintf(&res, "%s: %s\n", r.Title, r.Description)
	}
	return fmt.Sprintf(`Based on the following context about a person's well-being and the user-provided keywords, generate 3 sample social media posts.

Context:
- Potential Conditions: %s
- Helpful Resources: %s
- User Keywords: %q

Instructions for the posts:
1. The tone must be positive, hopeful, and supportive. The goal is to normalize conversations around self-care and mental/physical health.
2. The posts should be suitable for platforms like X (formerly Twitter) and Instagram.
3. Each post must be encouraging and avoid overly clinical or alarming language.
4. EVERY post MUST include the hashtag #thanksanonymous to thank the anonymous person who sent the Wink.
5. Include other relevant hashtags like #selfcare, #mentalhealthawareness, #itsokaytonotbeokay, etc.`,
		strings.TrimSpace(cond.String()), strings.TrimSpace(res.String()), keywords)
}

func giftPrompt(description string) string {
	return fmt.Sprintf("Based on the following description of a person, suggest 3-5 digital gift cards for them. Description: %q", description)
}

func moderationPrompt(text string) string {
	return "Please analyze the following text, which is a user-submitted observation for the WinkDrops app. The app is " +
		"about showing gentle, anonymous concern for a friend's well-being. Determine if the text is safe and appropriate. " +
		"It should be rejected if it contains harassment, bullying, threats, or malicious content. It should be accepted " +
		"if it is a genuine, even if awkwardly phrased, observation of behavior or appearance.\n\n" +
		fmt.Sprintf("Text to analyze: %q", text)
}
