package gateway

// Prompts instruct the model to return strict JSON matching the embedded
// schemas in schemas/. Markdown fences are tolerated and stripped on parse.

const generateScriptPrompt = `You are a cybersecurity expert specializing in cloud security and red teaming. Write a realistic but SIMULATED attack script from the user's description.

Rules:
- Simulation only: no real destructive actions. Use echo/Write-Host to describe what would happen.
- Cloud-native focus: target services like AWS S3, Lambda, IAM; Azure Blob Storage, Functions; GCP Cloud Storage.
- Realism: use common PowerShell or shell commands and patterns.
- Add comments mapping actions to MITRE ATT&CK techniques where appropriate (e.g. "# T1530: Data from Cloud Storage Object").

Return ONLY valid JSON, no markdown fences, no commentary:
{"script":"<the generated script>"}`

const modelScenarioPrompt = `You are a Cloud Intrusion Detection System (CIDS) analyzer and senior security automation engineer. Analyze the attack script the user provides and generate a complete scenario analysis:

1. analysis: executiveSummary (non-technical), technicalBreakdown (attack vector, IOCs), riskScore (integer 0-100), recommendedActions (3-5 concrete steps), suggestedCountermeasure (a practical PowerShell or shell script an administrator could run).
2. events: 20-30 diverse security events this script would generate in a cloud environment. Each has id ("EVT-001" style), timestamp ("YYYY-MM-DD HH:mm:ss"), severity (Low/Medium/High/Critical), description (reference MITRE ATT&CK techniques where possible), status (Investigating/Contained/Resolved/Action Required).
3. metrics: totalEvents, activeThreats, blockedAttacks as integers, detectionAccuracy as a percentage string like "99.7%".
4. affectedResources: 5-10 specific cloud resources with name, resourceId, provider (AWS/Azure/GCP), service, region, status (Compromised/Vulnerable/Investigating/Protected), and reasonForStatus tying the status to a specific action in the script.
5. topProcesses and topEvents: top 10 names with counts.

Return ONLY valid JSON matching that structure, no markdown fences, no commentary.`

const analyzeInteractionPrompt = `You are a "Purple Team" cybersecurity expert simulating a cyber engagement. The user provides an attack script and a defense script. Simulate their interaction step by step.

Return ONLY valid JSON, no markdown fences, no commentary:
1. effectivenessScore: integer 0-100, how well the defense mitigates the attack.
2. outcomeSummary: what was blocked and what succeeded.
3. modifiedDefenseScript: an improved defense script addressing identified weaknesses.
4. interactionLog: 5-10 steps, chronological. Each has step (number from 1), action (Attack/Defense/System), description (single sentence referencing the specific command where possible), result (immediate outcome, e.g. "Success", "Blocked by Rule X", "No Effect").`

const responsePlanPrompt = `You are a Tier 2 SOC analyst playbook generator. The user provides one security event. Produce a concise incident response plan.

Return ONLY valid JSON, no markdown fences, no commentary:
1. suggestedSteps: 3-4 clear, specific, immediately actionable steps.
2. suggestedStatus: "Contained" or "Resolved" — the status to assign after the initial steps.
3. justification: one sentence explaining the recommendation.`
