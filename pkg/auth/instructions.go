package auth

import (
	"fmt"
	"strings"
)

// ShowAPISetupGuide displays step-by-step instructions for obtaining
// Telegram API credentials
func ShowAPISetupGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 TELEGRAM API CREDENTIALS GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs Telegram API credentials to talk to the MTProto API.")
	fmt.Println("Follow these steps to obtain them:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open the Telegram developer portal")
	fmt.Println("   - Go to https://my.telegram.org")
	fmt.Println("   - Log in with the phone number of the account you will scrape with")
	fmt.Println()

	fmt.Println("🔧 STEP 2: Create an application")
	fmt.Println("   - Click 'API development tools'")
	fmt.Println("   - Fill in an app title and short name (anything works)")
	fmt.Println("   - Platform: Desktop")
	fmt.Println()

	fmt.Println("🔑 STEP 3: Copy these values:")
	fmt.Println("   ┌──────────┬──────────────────────────────────────────────┐")
	fmt.Println("   │ Field    │ What it looks like                           │")
	fmt.Println("   ├──────────┼──────────────────────────────────────────────┤")
	fmt.Println("   │ api_id   │ A number, e.g. 1234567                       │")
	fmt.Println("   ├──────────┼──────────────────────────────────────────────┤")
	fmt.Println("   │ api_hash │ 32-character hex string                      │")
	fmt.Println("   │          │ Example: 0123456789abcdef0123456789abcdef    │")
	fmt.Println("   └──────────┴──────────────────────────────────────────────┘")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • The same api_id/api_hash pair works for all your accounts")
	fmt.Println("   • The first scrape will ask for a login code sent to your Telegram app")
	fmt.Println("   • The session is saved locally, so the code is only needed once")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • api_hash plus a login code gives FULL access to your account")
	fmt.Println("   • NEVER share it with anyone")
	fmt.Println("   • Store it securely (this tool encrypts it)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}
