// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling used by both nerva front-ends.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. Status text always carries an ASCII indicator ([OK], [!])
so it stays readable without color.

# Usage

	theme := styles.NewTheme()
	fmt.Println(theme.Title.Render("NERVA"))
	fmt.Println(styles.RenderWarning("turn not saved"))
*/
package styles
