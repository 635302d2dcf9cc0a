package keywords

var wgslAll = concat(wgslKeywords, wgslTypes, wgslFunctions, wgslAttributes)

var wgslKeywords = []Item{
	kw("fn", "Function declaration"),
	kw("var", "Mutable variable declaration"),
	kw("let", "Immutable value declaration"),
	kw("const", "Compile-time constant"),
	kw("override", "Pipeline-overridable constant"),
	kw("struct", "Structure type"),
	kw("alias", "Type alias"),
	kw("if", "Conditional statement"),
	kw("else", "Alternative conditional branch"),
	kw("switch", "Switch statement"),
	kw("case", "Case selector"),
	kw("default", "Default case selector"),
	kw("loop", "Infinite loop"),
	kw("for", "For loop"),
	kw("while", "While loop"),
	kw("break", "Break statement"),
	kw("continue", "Continue statement"),
	kw("continuing", "Loop continuing block"),
	kw("return", "Return statement"),
	kw("discard", "Discard current fragment"),
	kw("enable", "Enable an extension"),
	kw("requires", "Require a language feature"),
	kw("true", "Boolean true"),
	kw("false", "Boolean false"),
	kw("function", "Function address space"),
	kw("private", "Private address space"),
	kw("workgroup", "Workgroup address space"),
	kw("uniform", "Uniform address space"),
	kw("storage", "Storage address space"),
	kw("read_write", "Read-write access mode"),
}

var wgslTypes = []Item{
	ty("bool", "Boolean type"),
	ty("i32", "32-bit signed integer"),
	ty("u32", "32-bit unsigned integer"),
	ty("f32", "32-bit floating point"),
	ty("f16", "16-bit floating point"),
	ty("vec2", "2-component vector"),
	ty("vec3", "3-component vector"),
	ty("vec4", "4-component vector"),
	ty("vec2f", "2-component f32 vector"),
	ty("vec3f", "3-component f32 vector"),
	ty("vec4f", "4-component f32 vector"),
	ty("vec2i", "2-component i32 vector"),
	ty("vec3i", "3-component i32 vector"),
	ty("vec4i", "4-component i32 vector"),
	ty("vec2u", "2-component u32 vector"),
	ty("vec3u", "3-component u32 vector"),
	ty("vec4u", "4-component u32 vector"),
	ty("mat2x2", "2x2 matrix"),
	ty("mat3x3", "3x3 matrix"),
	ty("mat4x4", "4x4 matrix"),
	ty("mat4x4f", "4x4 f32 matrix"),
	ty("array", "Fixed or runtime-sized array"),
	ty("atomic", "Atomic type"),
	ty("ptr", "Pointer type"),
	ty("texture_1d", "1D texture"),
	ty("texture_2d", "2D texture"),
	ty("texture_2d_array", "2D texture array"),
	ty("texture_3d", "3D texture"),
	ty("texture_cube", "Cube texture"),
	ty("texture_multisampled_2d", "2D multisample texture"),
	ty("texture_depth_2d", "2D depth texture"),
	ty("texture_storage_2d", "2D storage texture"),
	ty("sampler", "Texture sampler"),
	ty("sampler_comparison", "Comparison sampler"),
}

var wgslFunctions = []Item{
	fn("abs", "Absolute value", "abs($0)"),
	fn("acos", "Arc cosine", "acos($0)"),
	fn("asin", "Arc sine", "asin($0)"),
	fn("atan", "Arc tangent", "atan($0)"),
	fn("atan2", "Arc tangent of y/x", "atan2($0, $1)"),
	fn("ceil", "Round up to nearest integer", "ceil($0)"),
	fn("clamp", "Clamp value between min and max", "clamp($0, $1, $2)"),
	fn("cos", "Cosine", "cos($0)"),
	fn("cross", "Cross product", "cross($0, $1)"),
	fn("degrees", "Convert radians to degrees", "degrees($0)"),
	fn("distance", "Distance between two points", "distance($0, $1)"),
	fn("dot", "Dot product", "dot($0, $1)"),
	fn("exp", "Exponential function", "exp($0)"),
	fn("exp2", "Base-2 exponential", "exp2($0)"),
	fn("floor", "Round down to nearest integer", "floor($0)"),
	fn("fma", "Fused multiply-add", "fma($0, $1, $2)"),
	fn("fract", "Fractional part", "fract($0)"),
	fn("length", "Vector length", "length($0)"),
	fn("log", "Natural logarithm", "log($0)"),
	fn("log2", "Base-2 logarithm", "log2($0)"),
	fn("max", "Maximum value", "max($0, $1)"),
	fn("min", "Minimum value", "min($0, $1)"),
	fn("mix", "Linear interpolation", "mix($0, $1, $2)"),
	fn("normalize", "Normalize vector", "normalize($0)"),
	fn("pow", "Power function", "pow($0, $1)"),
	fn("radians", "Convert degrees to radians", "radians($0)"),
	fn("reflect", "Reflect vector", "reflect($0, $1)"),
	fn("refract", "Refract vector", "refract($0, $1, $2)"),
	fn("round", "Round to nearest integer", "round($0)"),
	fn("saturate", "Clamp to [0, 1]", "saturate($0)"),
	fn("select", "Component-wise select", "select($0, $1, $2)"),
	fn("sign", "Sign of value", "sign($0)"),
	fn("sin", "Sine", "sin($0)"),
	fn("smoothstep", "Smooth interpolation", "smoothstep($0, $1, $2)"),
	fn("sqrt", "Square root", "sqrt($0)"),
	fn("step", "Step function", "step($0, $1)"),
	fn("tan", "Tangent", "tan($0)"),
	fn("trunc", "Truncate to integer", "trunc($0)"),
	fn("textureSample", "Sample texture", "textureSample($0, $1, $2)"),
	fn("textureLoad", "Load a single texel", "textureLoad($0, $1, $2)"),
	fn("textureStore", "Write a single texel", "textureStore($0, $1, $2)"),
	fn("textureDimensions", "Texture dimensions", "textureDimensions($0)"),
	fn("arrayLength", "Runtime array length", "arrayLength($0)"),
	fn("workgroupBarrier", "Workgroup memory barrier", "workgroupBarrier()"),
}

var wgslAttributes = []Item{
	attr("@vertex", "Vertex entry point"),
	attr("@fragment", "Fragment entry point"),
	attr("@compute", "Compute entry point"),
	attr("@workgroup_size", "Compute workgroup size"),
	attr("@group", "Bind group index"),
	attr("@binding", "Binding index within a group"),
	attr("@location", "Inter-stage location"),
	attr("@builtin", "Built-in value"),
	attr("@interpolate", "Interpolation control"),
	attr("@align", "Member alignment"),
	attr("@size", "Member size"),
}
