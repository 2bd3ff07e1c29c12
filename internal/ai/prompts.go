package ai

// Prompt text is a tunable parameter. The JSON contracts at the end of each
// prompt are the part the parser depends on; everything else is guidance.

const classifySystemPrompt = `You are a cybersecurity analyst expert at identifying data breach incidents. Always respond with valid JSON.`

const classifyUserPrompt = `You are a cybersecurity analyst determining if an article is about a DATA BREACH incident.

Article Title: %s
Article Summary: %s

A DATA BREACH is an incident where:
- Unauthorized access to sensitive data occurred
- Data was stolen, leaked, exposed, or compromised
- A specific organization/company was victimized
- Personal information, credentials, or confidential data was affected

NOT a data breach:
- Vulnerability disclosures (CVEs without confirmed exploitation)
- Security tool/product announcements
- Threat intelligence reports without specific victim
- Malware analysis without confirmed data theft
- Security best practices or advice articles
- Policy/compliance updates
- Ransomware attacks WITHOUT data exfiltration mentioned

Return JSON:
{
  "is_breach": true or false,
  "confidence": 0.0 to 1.0 (confidence in your classification),
  "reasoning": "Brief 1-sentence explanation of your decision"
}

Be strict: Only classify as breach if there's clear evidence of data compromise.`

const extractSystemPrompt = `You are a cybersecurity analyst expert at extracting structured data from breach news articles. Always respond with valid JSON.`

const extractUserPrompt = `You are a cybersecurity analyst extracting structured breach data from news articles.

Article Title: %s
Article URL: %s
Article Summary: %s
Today's Date: %s

Extract the following information in JSON format:

{
  "company": "Name of the breached or affected organization. Infer from context if not explicitly stated. Use null ONLY if no organization can reasonably be identified.",
  "title": "Concise, descriptive breach headline including company name, year, and nature of breach. Max 80 chars.",
  "industry": "Industry sector (healthcare, finance, retail, technology, government, education, null if unknown)",
  "country": "Country where the breached organization is headquartered or operates (null if unknown)",
  "continent": "Continent of the breached organization: Africa|Asia|Europe|North America|Oceania|South America (null if unknown)",
  "discovery_date": "Month and year the breach was internally discovered, YYYY-MM-01 (null if not clearly stated)",
  "disclosure_date": "Month and year the breach was publicly disclosed, YYYY-MM-01 (null if not clearly stated)",
  "records_affected": number of records affected as integer (null if not specified),
  "breach_method": "Brief description of how the breach occurred (null if not specified)",
  "attack_vector": "One of: phishing|ransomware|malware|vulnerability_exploit|credential_attack|social_engineering|insider|supply_chain|misconfiguration|unauthorized_access|scraping|other (null if unclear)",
  "threat_actor": "Name of the threat actor, hacker group, or ransomware gang responsible (null if unknown)",
  "data_compromised": ["Array of data types exposed, e.g., emails, passwords, SSNs, credit cards"],
  "severity": "One of: low|medium|high|critical based on impact (null if cannot determine)",
  "cve_references": ["Array of CVE IDs mentioned, e.g., CVE-2024-1234"],
  "mitre_attack_techniques": ["Array of MITRE ATT&CK technique IDs if mentioned, e.g., T1078"],
  "summary": "Detailed summary of the breach in 2-3 paragraphs: what happened and the scale; how it happened; response and current status.",
  "lessons_learned": "Brief analysis of what security controls failed (null if cannot determine)"
}

Guidelines:
- Only populate dates the article explicitly states or clearly implies; never guess from vague terms like "recently". Always use YYYY-MM-01, dropping the day.
- For records_affected, only include if a specific number is mentioned.
- Be factual; do not speculate.
- Ensure valid JSON format.`

const detectSystemPrompt = `You are a cybersecurity analyst expert at identifying whether news articles are about new breaches or updates to existing incidents. Always respond with valid JSON.`

const detectUserPrompt = `You are a cybersecurity intelligence analyst. Classify this article into exactly one of three categories:

NEW_BREACH      - A breach incident not already in the database.
GENUINE_UPDATE  - An existing breach in the database, but this article adds meaningfully new information:
                  revised/higher record counts, new legal or regulatory action, new technical attack details,
                  confirmation of previously unknown data types, remediation steps, or investigation findings.
DUPLICATE_SOURCE - An existing breach in the database, but this article adds no meaningfully new facts.
                  It re-reports the same incident from a different outlet with the same or very similar details.

Article Title: %s
Article URL: %s
Article Summary: %s

Existing breaches in database:
%s

Classification rules:
- Match on company name first. If the company does not appear in the list, classify as NEW_BREACH.
- Once a company match is found, compare structured fields:
    - If records_affected, attack_vector, and discovery_date all match and the article adds no new details -> DUPLICATE_SOURCE
    - If any key field differs (record count revised, new attack detail revealed, legal/regulatory action, remediation) -> GENUINE_UPDATE
- When in doubt about whether new information is present, prefer DUPLICATE_SOURCE over GENUINE_UPDATE.
- When in doubt about whether the company matches at all, prefer NEW_BREACH over DUPLICATE_SOURCE.

Return JSON only:
{
  "classification": "NEW_BREACH|GENUINE_UPDATE|DUPLICATE_SOURCE",
  "related_breach_id": "UUID of the matching breach from the list above, or null if NEW_BREACH",
  "update_type": "One of: new_info|class_action|regulatory_fine|remediation|resolution|investigation|null",
  "update_summary": "For GENUINE_UPDATE: one short sentence describing only what is new, not a restatement of the whole incident. Null otherwise.",
  "confidence": 0.0 to 1.0 confidence score,
  "reasoning": "One sentence explanation citing the specific signal that drove your classification"
}`
