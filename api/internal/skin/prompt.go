package skin

// Prompt is sent verbatim ahead of the image on every analysis.
const Prompt = `
  Analyze the skin in this image as a professional dermatologist.
  Focus on visual cues like shininess, pore size, visible flakiness, or redness.
  Based on your analysis, classify the skin type into one of three categories: "Oily", "Dry", or "Normal".
  Your response MUST be ONLY one of those three words. Do not add any other explanation or punctuation.
  If the image is unclear, blurry, has heavy makeup, or you cannot determine the skin type for any reason, respond with the word "Uncertain".
`
