package generate

// DefaultRawArtifact simulates the raw output of a web vulnerability
// scanner such as ZAP or Nikto. The pipeline performs no live probing;
// this artifact is the stand-in scan-log a real deployment would
// receive from an external scan-log producer.
const DefaultRawArtifact = `{
  "site": "https://example.com",
  "alerts": [
    {
      "pluginid": "10021",
      "alert": "X-Content-Type-Options Header Missing",
      "name": "X-Content-Type-Options Header Missing",
      "risk": "Low",
      "description": "The X-Content-Type-Options header is not set. This could allow an attacker to perform MIME-sniffing attacks.",
      "solution": "Ensure that the X-Content-Type-Options header is set to 'nosniff' for all responses."
    },
    {
      "pluginid": "40012",
      "alert": "Cross-Domain JavaScript Source File Inclusion",
      "name": "Cross-Domain JavaScript Source File Inclusion",
      "risk": "Medium",
      "description": "The page includes a script from a third-party domain. This could expose the site to security risks if the third-party domain is compromised.",
      "solution": "Host all JavaScript files on the same domain as the application."
    },
    {
      "pluginid": "90022",
      "alert": "Application Error Disclosure",
      "name": "Application Error Disclosure",
      "risk": "Medium",
      "description": "The application may be leaking error messages or stack traces. This can reveal sensitive information about the application's internals.",
      "solution": "Configure the application to show generic error pages instead of detailed error messages."
    }
  ]
}`
