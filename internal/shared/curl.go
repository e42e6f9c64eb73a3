// Utilities for recovering the SoundCloud OAuth token from a browser "Copy as cURL" command.
package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

var (
	curlHeaderRegex = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
//
// Header names are lower-cased.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command and extracts headers and cookies.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	cookie := headers["cookie"]
	delete(headers, "cookie")
	if match := curlCookieRegex.FindStringSubmatch(curlCmd); match != nil {
		cookie = firstGroup(match)
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers, Cookie: cookie}, nil
}

// OAuthToken returns the token from an "Authorization: OAuth <token>" header, falling back to
// the oauth_token cookie.
func (c *CurlHeaders) OAuthToken() (string, error) {
	if auth, ok := c.Headers["authorization"]; ok {
		scheme, token, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "OAuth") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
	}

	for part := range strings.SplitSeq(c.Cookie, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == "oauth_token" && value != "" {
			return value, nil
		}
	}

	return "", fmt.Errorf("%w: no SoundCloud OAuth token in curl command", ErrInvalidInput)
}

// SaveEnvToken sets [TokenEnvVar] in the dotenv file at path, keeping its other entries.
func SaveEnvToken(path, token string) error {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		env = map[string]string{}
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	env[TokenEnvVar] = token
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
